package models

import (
	"testing"
	"time"
)

func TestFile_IsShareExpired(t *testing.T) {
	now := time.Now()
	token := "4a1f2c3d"

	past := now.Add(-time.Second)
	future := now.Add(time.Second)

	tests := []struct {
		name string
		file File
		want bool
	}{
		{name: "nil expiry never expires", file: File{SharedLink: &token}, want: false},
		{name: "one second in the past", file: File{SharedLink: &token, SharedExpiry: &past}, want: true},
		{name: "one second in the future", file: File{SharedLink: &token, SharedExpiry: &future}, want: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.file.IsShareExpired(now); got != tc.want {
				t.Fatalf("IsShareExpired = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestFile_HasLiveShare(t *testing.T) {
	now := time.Now()
	token := "4a1f2c3d"
	future := now.Add(time.Hour)

	f := File{}
	if f.HasLiveShare(now) {
		t.Fatalf("file without token must not have a live share")
	}

	f = File{SharedLink: &token, SharedExpiry: &future}
	if !f.HasLiveShare(now) {
		t.Fatalf("file with future expiry must have a live share")
	}
}
