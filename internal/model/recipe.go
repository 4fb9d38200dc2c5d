package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	pgvector "github.com/pgvector/pgvector-go"
)

// Twist generation statuses. A recipe starts as pending and is driven
// through generating into a terminal state by the background worker.
const (
	StatusPending    = "pending"
	StatusGenerating = "generating"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Twist is the structured suggestion returned by the generation service.
type Twist struct {
	TwistIngredient string `json:"twist_ingredient"`
	Reason          string `json:"reason"`
	HowToUse        string `json:"how_to_use"`
}

// TwistResult holds either a generated Twist or, after a failed attempt,
// the error text. It is stored in a single JSONB column as either the
// structured object or a bare string.
type TwistResult struct {
	Twist *Twist `json:"-"`
	Err   string `json:"-"`
}

// Value implements the driver.Valuer interface
func (r TwistResult) Value() (driver.Value, error) {
	if r.Twist != nil {
		return json.Marshal(r.Twist)
	}
	if r.Err != "" {
		return json.Marshal(r.Err)
	}
	return nil, nil
}

// Scan implements the sql.Scanner interface
func (r *TwistResult) Scan(value interface{}) error {
	*r = TwistResult{}
	if value == nil {
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}
	if len(bytes) == 0 {
		return nil
	}

	var errText string
	if err := json.Unmarshal(bytes, &errText); err == nil {
		r.Err = errText
		return nil
	}

	var twist Twist
	if err := json.Unmarshal(bytes, &twist); err != nil {
		return err
	}
	r.Twist = &twist
	return nil
}

// MarshalJSON renders the payload the way it is stored: the twist object,
// the error string, or null when no generation has finished yet.
func (r TwistResult) MarshalJSON() ([]byte, error) {
	if r.Twist != nil {
		return json.Marshal(r.Twist)
	}
	if r.Err != "" {
		return json.Marshal(r.Err)
	}
	return []byte("null"), nil
}

// UnmarshalJSON accepts both shapes so API payloads round-trip.
func (r *TwistResult) UnmarshalJSON(data []byte) error {
	return r.Scan(data)
}

type Recipe struct {
	ID                 uint               `gorm:"primaryKey" json:"id"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
	Name               string             `gorm:"size:200;not null" json:"name"`
	Instructions       string             `gorm:"type:text" json:"instructions"`
	CookingTime        int                `gorm:"not null" json:"cooking_time"`
	OwnerID            uuid.UUID          `gorm:"type:uuid;not null" json:"owner_id"`
	ImageURL           string             `gorm:"size:255" json:"image_url,omitempty"`
	AIGenerationStatus string             `gorm:"size:20;not null;default:pending" json:"ai_generation_status"`
	TwistResult        TwistResult        `gorm:"type:jsonb" json:"twist_result"`
	Embedding          pgvector.Vector    `gorm:"type:vector(3)" json:"-"`
	RecipeIngredients  []RecipeIngredient `gorm:"constraint:OnDelete:CASCADE" json:"ingredients"`
	Macro              *Macro             `gorm:"constraint:OnDelete:CASCADE" json:"macro,omitempty"`
}

// RecipeIngredient links a recipe to one of its ingredients with a
// free-form quantity ("200g", "2 tbsp"). A recipe never links the same
// ingredient twice.
type RecipeIngredient struct {
	ID           uint       `gorm:"primaryKey" json:"-"`
	RecipeID     uint       `gorm:"not null;uniqueIndex:idx_recipe_ingredients_pair" json:"-"`
	IngredientID uint       `gorm:"not null;uniqueIndex:idx_recipe_ingredients_pair" json:"-"`
	Ingredient   Ingredient `json:"ingredient"`
	Quantity     string     `gorm:"size:50;not null" json:"quantity"`
}
