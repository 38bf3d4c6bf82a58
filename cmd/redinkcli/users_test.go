package main

import (
	"testing"

	"github.com/spf13/cobra"

	"github.com/leedaaye/redink-ziyong/internal/pwhash"
	"github.com/leedaaye/redink-ziyong/storage"
	"github.com/leedaaye/redink-ziyong/storage/model"
)

func setTestStore(t *testing.T) {
	t.Helper()
	users = storage.NewFileStorage(
		t.TempDir(), pwhash.Params{
			Time:        1,
			MemoryKiB:   8 * 1024,
			Parallelism: 1,
			KeyLen:      32,
			SaltLen:     16,
		},
	)
}

func TestUserCommandsUnknownID(t *testing.T) {
	setTestStore(t)

	for _, cmd := range []*cobra.Command{usersToggleCmd, usersRegenerateCmd, usersDeleteCmd} {
		err := cmd.RunE(cmd, []string{"unknown"})
		if err == nil {
			t.Errorf("users %s accepted an unknown id", cmd.Name())
			continue
		}
		if _, ok := err.(model.NotFoundError); !ok {
			t.Errorf("users %s returned %T for an unknown id, want model.NotFoundError", cmd.Name(), err)
		}
	}
}

func TestUserCommandsLifecycle(t *testing.T) {
	setTestStore(t)

	if err := usersCreateCmd.RunE(usersCreateCmd, []string{"alice"}); err != nil {
		t.Fatalf("users create failed: %v", err)
	}
	list, err := users.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 1 || list[0].Username != "alice" {
		t.Fatalf("users create did not persist the user, store holds %+v", list)
	}
	id := list[0].ID

	if err = usersToggleCmd.RunE(usersToggleCmd, []string{id}); err != nil {
		t.Errorf("users toggle failed: %v", err)
	}
	if err = usersRegenerateCmd.RunE(usersRegenerateCmd, []string{id}); err != nil {
		t.Errorf("users regenerate failed: %v", err)
	}
	if err = usersDeleteCmd.RunE(usersDeleteCmd, []string{id}); err != nil {
		t.Errorf("users delete failed: %v", err)
	}
	if u, _ := users.GetByID(id); u != nil {
		t.Error("users delete did not remove the user")
	}
}
