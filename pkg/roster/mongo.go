package roster

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"badgeforge/pkg/errors"
)

// MongoConfig locates the roster collections.
type MongoConfig struct {
	URI                    string
	Database               string
	EntitiesCollection     string
	ParticipantsCollection string
}

// MongoSource reads entities and participants from MongoDB collections.
// Documents use the same field names as the CSV columns (entity_id,
// entity_type, team_name, institution_name, participant_id, name).
// Values follow the CSV loader's rules: every field is trimmed, absent
// optional fields default to the empty string, and a document without an
// entity_id field is a fatal error. Participants are read in natural
// collection order, which preserves insertion order for append-only
// roster uploads.
type MongoSource struct {
	client *mongo.Client
	cfg    MongoConfig
}

var _ Source = (*MongoSource)(nil)

// NewMongoSource connects to the MongoDB deployment at cfg.URI.
// Callers own the returned source and must Close it.
func NewMongoSource(ctx context.Context, cfg MongoConfig) (*MongoSource, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "connect to %s", cfg.URI)
	}
	if cfg.EntitiesCollection == "" {
		cfg.EntitiesCollection = "entities"
	}
	if cfg.ParticipantsCollection == "" {
		cfg.ParticipantsCollection = "participants"
	}
	return &MongoSource{client: client, cfg: cfg}, nil
}

// Close disconnects from the deployment.
func (s *MongoSource) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Document fields mirror the CSV columns and go through the same value
// rules: the entity_id field is mandatory (a pointer distinguishes an
// absent field from a present-but-empty one, the way the CSV loader
// distinguishes a missing column from an empty cell), everything else
// defaults to "" and all values are trimmed.
type entityDoc struct {
	EntityID        *string `bson:"entity_id"`
	EntityType      string  `bson:"entity_type"`
	TeamName        string  `bson:"team_name"`
	InstitutionName string  `bson:"institution_name"`
}

// toEntity converts a decoded document into an Entity.
func (d entityDoc) toEntity() (Entity, error) {
	if d.EntityID == nil {
		return Entity{}, errors.New(errors.ErrCodeMissingKey, "entity document missing %s field", colEntityID)
	}
	return Entity{
		ID:   strings.TrimSpace(*d.EntityID),
		Type: strings.TrimSpace(d.EntityType),
		DisplayName: resolveDisplayName(
			strings.TrimSpace(d.TeamName),
			strings.TrimSpace(d.InstitutionName),
		),
	}, nil
}

type participantDoc struct {
	EntityID      *string `bson:"entity_id"`
	ParticipantID string  `bson:"participant_id"`
	Name          string  `bson:"name"`
}

// toParticipant converts a decoded document into a Participant and the
// entity ID it belongs to.
func (d participantDoc) toParticipant() (string, Participant, error) {
	if d.EntityID == nil {
		return "", Participant{}, errors.New(errors.ErrCodeMissingKey, "participant document missing %s field", colEntityID)
	}
	return strings.TrimSpace(*d.EntityID), Participant{
		ID:   strings.TrimSpace(d.ParticipantID),
		Name: strings.TrimSpace(d.Name),
	}, nil
}

// Entities loads the entities collection keyed by entity ID.
// Duplicate entity IDs overwrite, matching the CSV loader.
func (s *MongoSource) Entities(ctx context.Context) (map[string]Entity, error) {
	coll := s.client.Database(s.cfg.Database).Collection(s.cfg.EntitiesCollection)
	cur, err := coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "query %s", s.cfg.EntitiesCollection)
	}
	defer cur.Close(ctx)

	entities := make(map[string]Entity)
	for cur.Next(ctx) {
		var doc entityDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, errors.Wrap(errors.ErrCodeIO, err, "decode entity document")
		}
		entity, err := doc.toEntity()
		if err != nil {
			return nil, err
		}
		entities[entity.ID] = entity
	}
	if err := cur.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "iterate %s", s.cfg.EntitiesCollection)
	}
	return entities, nil
}

// Participants loads the participants collection grouped by entity ID in
// natural cursor order.
func (s *MongoSource) Participants(ctx context.Context) (*ParticipantsByEntity, error) {
	coll := s.client.Database(s.cfg.Database).Collection(s.cfg.ParticipantsCollection)
	cur, err := coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "query %s", s.cfg.ParticipantsCollection)
	}
	defer cur.Close(ctx)

	parts := NewParticipantsByEntity()
	for cur.Next(ctx) {
		var doc participantDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, errors.Wrap(errors.ErrCodeIO, err, "decode participant document")
		}
		entityID, p, err := doc.toParticipant()
		if err != nil {
			return nil, err
		}
		parts.Add(entityID, p)
	}
	if err := cur.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "iterate %s", s.cfg.ParticipantsCollection)
	}
	return parts, nil
}
