package cli

import (
	"context"
	"testing"

	"zettel-cli/internal/model"
	"zettel-cli/internal/store"
)

func seedZettel(t *testing.T, dbPath, username, path, body string) {
	t.Helper()
	ctx := context.Background()
	st, _, err := store.Open(ctx, dbPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer st.Close()

	user, err := st.UserByName(ctx, username)
	if err != nil {
		t.Fatalf("UserByName: %v", err)
	}
	if user == nil {
		t.Fatalf("unknown user %q", username)
	}
	if err := st.UpdateZettel(ctx, user.ID, &model.Zettel{Path: path, Body: body}); err != nil {
		t.Fatalf("UpdateZettel: %v", err)
	}
}
