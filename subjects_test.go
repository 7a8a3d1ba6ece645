package mofujobs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStreamName(t *testing.T) {
	tests := []struct {
		subject string
		want    string
	}{
		{SubjectReindexPosts, "JOBS-REINDEX-POSTS"},
		{SubjectReindexUsers, "JOBS-REINDEX-USERS"},
		{SubjectIndexPost, "JOBS-INDEX-POST"},
		{SubjectIndexUser, "JOBS-INDEX-USER"},
		{SubjectEmail, "JOBS-EMAIL"},
		{SubjectDeleteContent, "JOBS-DELETE-CONTENT"},
	}

	for _, tt := range tests {
		t.Run(tt.subject, func(t *testing.T) {
			require.Equal(t, tt.want, StreamName(tt.subject))
		})
	}
}

func TestSubjects(t *testing.T) {
	subjects := Subjects()
	require.Len(t, subjects, 6)

	// Subjects must be distinct and each must map to a distinct stream.
	seen := make(map[string]bool)
	for _, s := range subjects {
		require.False(t, seen[StreamName(s)], "duplicate stream for %s", s)
		seen[StreamName(s)] = true
	}
}
