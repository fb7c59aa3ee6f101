package roster

import (
	"context"
	stdcsv "encoding/csv"
	"io"
	"os"
	"strings"

	"badgeforge/pkg/errors"
)

// Column names recognized in the upload files.
const (
	colEntityID        = "entity_id"
	colEntityType      = "entity_type"
	colTeamName        = "team_name"
	colInstitutionName = "institution_name"
	colParticipantID   = "participant_id"
	colName            = "name"
)

// CSVSource reads entities and participants from two CSV files with
// header rows. Missing optional cells default to the empty string and
// every field is trimmed of surrounding whitespace; only the entity_id
// column is mandatory.
type CSVSource struct {
	EntitiesPath     string
	ParticipantsPath string
}

var _ Source = CSVSource{}

// Entities loads the entities file into a map keyed by entity ID.
// Duplicate entity IDs silently overwrite: last row wins.
func (s CSVSource) Entities(ctx context.Context) (map[string]Entity, error) {
	entities := make(map[string]Entity)
	err := readCSV(s.EntitiesPath, func(row record) {
		id := row.get(colEntityID)
		entities[id] = Entity{
			ID:   id,
			Type: row.get(colEntityType),
			DisplayName: resolveDisplayName(
				row.get(colTeamName),
				row.get(colInstitutionName),
			),
		}
	})
	if err != nil {
		return nil, err
	}
	return entities, nil
}

// Participants loads the participants file grouped by entity ID.
// Rows append in input order; duplicates are kept.
func (s CSVSource) Participants(ctx context.Context) (*ParticipantsByEntity, error) {
	parts := NewParticipantsByEntity()
	err := readCSV(s.ParticipantsPath, func(row record) {
		parts.Add(row.get(colEntityID), Participant{
			ID:   row.get(colParticipantID),
			Name: row.get(colName),
		})
	})
	if err != nil {
		return nil, err
	}
	return parts, nil
}

// record is one data row indexed by the header.
type record struct {
	index  map[string]int
	fields []string
}

// get returns the trimmed value of the named column, or "" when the
// column is absent or the row is too short. Ragged rows are tolerated by
// design: malformed rows are defaulted, never rejected.
func (r record) get(col string) string {
	i, ok := r.index[col]
	if !ok || i >= len(r.fields) {
		return ""
	}
	return strings.TrimSpace(r.fields[i])
}

// readCSV streams the rows of a header-led CSV file through fn.
// A file whose header lacks the entity_id column is a fatal error: the
// key is mandatory for both record kinds.
func readCSV(path string, fn func(record)) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "open %s", path)
	}
	defer f.Close()

	r := stdcsv.NewReader(f)
	r.FieldsPerRecord = -1 // rows may be ragged; short rows default to ""

	header, err := r.Read()
	if err == io.EOF {
		return errors.New(errors.ErrCodeMissingKey, "%s: empty file, %s column required", path, colEntityID)
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "read header of %s", path)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}
	if _, ok := index[colEntityID]; !ok {
		return errors.New(errors.ErrCodeMissingKey, "%s: missing required %s column", path, colEntityID)
	}

	for {
		fields, err := r.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.Wrap(errors.ErrCodeIO, err, "read %s", path)
		}
		fn(record{index: index, fields: fields})
	}
}
