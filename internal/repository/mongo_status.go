package repository

import (
	"context"
	"fmt"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const maxListedCollections = 10

type mongoStatus struct {
	db *mongo.Database
}

func NewMongoStatus(db *mongo.Database) StatusReporter {
	return &mongoStatus{db: db}
}

func (m *mongoStatus) Diagnose(ctx context.Context) Diagnostics {
	d := Diagnostics{
		Backend:     "running",
		Database:    "not available",
		Collections: []string{},
	}
	if m.db == nil {
		return d
	}

	d.DatabaseName = m.db.Name()
	d.Database = "connected"

	names, err := m.db.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		d.Database = fmt.Sprintf("connected but error: %s", truncate(err.Error(), 50))
		return d
	}

	if len(names) > maxListedCollections {
		names = names[:maxListedCollections]
	}
	d.Collections = names
	d.Database = "connected and working"
	return d
}

// truncate keeps at most n runes of s.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
