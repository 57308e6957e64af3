package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/daos"
	pbModels "github.com/pocketbase/pocketbase/models"
	"github.com/pocketbase/pocketbase/models/schema"

	"escrutinio/internal/models"
)

const partiesCollection = "parties"

// PartyStore reads and writes the parties collection
type PartyStore struct {
	dao *daos.Dao
}

// NewPartyStore wraps a PocketBase DAO
func NewPartyStore(dao *daos.Dao) *PartyStore {
	return &PartyStore{dao: dao}
}

// EnsureCollection creates the parties collection if it does not exist
func (s *PartyStore) EnsureCollection() error {
	if _, err := s.dao.FindCollectionByNameOrId(partiesCollection); err == nil {
		return nil
	}

	collection := &pbModels.Collection{
		Name: partiesCollection,
		Type: pbModels.CollectionTypeBase,
		Schema: schema.NewSchema(
			&schema.SchemaField{
				Name:     "abbreviation",
				Type:     schema.FieldTypeText,
				Required: true,
			},
			&schema.SchemaField{
				Name: "name",
				Type: schema.FieldTypeText,
			},
			&schema.SchemaField{
				Name: "color",
				Type: schema.FieldTypeText,
			},
			&schema.SchemaField{
				Name: "ideology",
				Type: schema.FieldTypeNumber,
			},
		),
	}

	if err := s.dao.SaveCollection(collection); err != nil {
		return fmt.Errorf("failed to save collection: %w", err)
	}
	return nil
}

// FindParty returns the first party whose abbreviation contains abbr,
// case-insensitively. Shorter abbreviations sort first so an exact match wins.
func (s *PartyStore) FindParty(ctx context.Context, abbr string) (models.Party, error) {
	collection, err := s.dao.FindCollectionByNameOrId(partiesCollection)
	if err != nil {
		return models.Party{}, fmt.Errorf("failed to find collection: %w", err)
	}

	var records []*pbModels.Record
	err = s.dao.RecordQuery(collection).
		WithContext(ctx).
		AndWhere(dbx.Like("abbreviation", strings.TrimSpace(abbr))).
		OrderBy("LENGTH(abbreviation) ASC", "created ASC").
		Limit(1).
		All(&records)
	if err != nil {
		return models.Party{}, fmt.Errorf("failed to query parties: %w", err)
	}
	if len(records) == 0 {
		return models.Party{}, models.ErrPartyNotFound
	}
	return recordToParty(records[0]), nil
}

// SaveParty inserts a party or updates the row with the same abbreviation
func (s *PartyStore) SaveParty(p *models.Party) error {
	if err := p.Validate(); err != nil {
		return err
	}
	abbr := strings.ToUpper(strings.TrimSpace(p.Abbreviation))

	record, err := s.dao.FindFirstRecordByData(partiesCollection, "abbreviation", abbr)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("failed to find party %s: %w", abbr, err)
		}
		collection, err := s.dao.FindCollectionByNameOrId(partiesCollection)
		if err != nil {
			return fmt.Errorf("failed to find collection: %w", err)
		}
		record = pbModels.NewRecord(collection)
	}

	record.Set("abbreviation", abbr)
	record.Set("name", p.Name)
	record.Set("color", strings.ToUpper(p.Color))
	record.Set("ideology", p.Ideology)

	if err := s.dao.SaveRecord(record); err != nil {
		return fmt.Errorf("failed to save record: %w", err)
	}
	p.ID = record.Id
	return nil
}

// ListParties returns every stored party ordered by ideology
func (s *PartyStore) ListParties() ([]models.Party, error) {
	records, err := s.dao.FindRecordsByExpr(partiesCollection)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch parties: %w", err)
	}

	parties := make([]models.Party, len(records))
	for i, record := range records {
		parties[i] = recordToParty(record)
	}
	sort.SliceStable(parties, func(i, j int) bool {
		if parties[i].Ideology != parties[j].Ideology {
			return parties[i].Ideology < parties[j].Ideology
		}
		return parties[i].Abbreviation < parties[j].Abbreviation
	})
	return parties, nil
}

// DeleteParty removes the party with the exact abbreviation
func (s *PartyStore) DeleteParty(abbr string) error {
	record, err := s.dao.FindFirstRecordByData(partiesCollection, "abbreviation", strings.ToUpper(strings.TrimSpace(abbr)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.ErrPartyNotFound
		}
		return fmt.Errorf("failed to find party: %w", err)
	}
	if err := s.dao.DeleteRecord(record); err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	return nil
}

func recordToParty(record *pbModels.Record) models.Party {
	return models.Party{
		ID:           record.Id,
		Abbreviation: record.GetString("abbreviation"),
		Name:         record.GetString("name"),
		Color:        record.GetString("color"),
		Ideology:     record.GetFloat("ideology"),
	}
}
