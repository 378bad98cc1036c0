package errors

import (
	"errors"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestParseError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		context  string
		wantCode string
		wantMsg  string
	}{
		{
			name:     "Record not found with bottle context",
			err:      gorm.ErrRecordNotFound,
			context:  "bottle lookup",
			wantCode: ResourceNotFound,
			wantMsg:  "bottle not found",
		},
		{
			name:     "Record not found with tag context",
			err:      gorm.ErrRecordNotFound,
			context:  "tag upsert",
			wantCode: ResourceNotFound,
			wantMsg:  "tag not found",
		},
		{
			name:     "Unique violation on tags",
			err:      &pq.Error{Code: "23505", Constraint: "idx_tags_owner_name"},
			wantCode: ResourceAlreadyExists,
			wantMsg:  "tag already exists for this owner",
		},
		{
			name:     "Unique violation on bottle_tags",
			err:      &pq.Error{Code: "23505", Constraint: "bottle_tags_pkey"},
			wantCode: ResourceAlreadyExists,
			wantMsg:  "bottle is already linked to this tag",
		},
		{
			name:     "Foreign key violation",
			err:      &pq.Error{Code: "23503"},
			wantCode: ResourceConflict,
		},
		{
			name:     "Not-null violation names the column",
			err:      &pq.Error{Code: "23502", Column: "brand"},
			wantCode: ValidationRequired,
			wantMsg:  "required field brand is missing",
		},
		{
			name:     "SQLite unique constraint text",
			err:      errors.New("UNIQUE constraint failed: tags.owner_id, tags.name"),
			wantCode: ResourceAlreadyExists,
		},
		{
			name:     "Connection refused",
			err:      errors.New("dial tcp 127.0.0.1:5432: connection refused"),
			wantCode: InternalExternalAPI,
		},
		{
			name:     "Unknown error passes through",
			err:      errors.New("disk full"),
			wantCode: InternalDatabaseError,
			wantMsg:  "disk full",
		},
		{
			name:     "Nil error",
			err:      nil,
			wantCode: InternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := ParseError(tt.err, tt.context)

			assert.Equal(t, tt.wantCode, info.Code)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, info.Message)
			}
		})
	}
}
