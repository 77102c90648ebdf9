package model

import (
	"encoding/json"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Meta holds the server-assigned identity and timestamps of a document.
type Meta struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (m *Meta) Base() *Meta { return m }

// Stamp assigns the id when missing and refreshes the timestamps. created is
// kept when it is already set, which is how replacements preserve createdAt.
func (m *Meta) Stamp(now time.Time) {
	now = now.UTC().Truncate(time.Millisecond)
	if m.ID.IsZero() {
		m.ID = primitive.NewObjectID()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.UpdatedAt = now
}

// Number is a numeric field that also accepts numeric strings, as HTML forms
// tend to send them.
type Number float64

var numberType = reflect.TypeOf(Number(0))

func NewNumber(f float64) *Number {
	n := Number(f)
	return &n
}

func (n *Number) Float() float64 {
	if n == nil {
		return 0
	}
	return float64(*n)
}

func (n *Number) UnmarshalJSON(b []byte) error {
	s := string(b)
	if strings.HasPrefix(s, `"`) {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		// The decoder fills in the field name for this error type.
		return &json.UnmarshalTypeError{Value: string(b), Type: numberType}
	}
	*n = Number(f)
	return nil
}

func (n *Number) String() string {
	if n == nil {
		return ""
	}
	return strconv.FormatFloat(float64(*n), 'f', -1, 64)
}
