// internal/models/profile.go
package models

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Defaults applied when a profile field is absent.
const (
	DefaultAge           = 25
	DefaultGender        = "female"
	DefaultHeightCM      = 165.0
	DefaultWeightKG      = 60.0
	DefaultActivityLevel = "moderate"
	DefaultDietaryPref   = "mixed"
)

// Profile is the single stored user record. Every field except ID is optional.
type Profile struct {
	ID            int64    `json:"id,omitempty"`
	Name          *string  `json:"name,omitempty"`
	Age           *int     `json:"age,omitempty"`
	Gender        *string  `json:"gender,omitempty"`
	HeightCM      *float64 `json:"height_cm,omitempty"`
	WeightKG      *float64 `json:"weight_kg,omitempty"`
	ActivityLevel *string  `json:"activity_level,omitempty"`
	DietaryPref   *string  `json:"dietary_pref,omitempty"`
	Allergies     *string  `json:"allergies,omitempty"`
	Budget        *string  `json:"budget,omitempty"`
	Region        *string  `json:"region,omitempty"`
	Goals         *string  `json:"goals,omitempty"`
}

// UnmarshalJSON accepts age, height_cm and weight_kg as JSON numbers or as
// numeric strings, which is what HTML number inputs produce. An empty string
// or null leaves the field absent.
func (p *Profile) UnmarshalJSON(data []byte) error {
	type plain Profile
	aux := struct {
		*plain
		Age      json.RawMessage `json:"age"`
		HeightCM json.RawMessage `json:"height_cm"`
		WeightKG json.RawMessage `json:"weight_kg"`
	}{plain: (*plain)(p)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	age, err := decodeNumber("age", aux.Age)
	if err != nil {
		return err
	}
	if age != nil {
		p.Age = Int(int(math.Trunc(*age)))
	} else {
		p.Age = nil
	}
	if p.HeightCM, err = decodeNumber("height_cm", aux.HeightCM); err != nil {
		return err
	}
	if p.WeightKG, err = decodeNumber("weight_kg", aux.WeightKG); err != nil {
		return err
	}
	return nil
}

func decodeNumber(field string, raw json.RawMessage) (*float64, error) {
	text := strings.TrimSpace(string(raw))
	if text == "" || text == "null" {
		return nil, nil
	}
	if strings.HasPrefix(text, `"`) {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("%s: %w", field, err)
		}
		text = strings.TrimSpace(s)
		if text == "" {
			return nil, nil
		}
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, fmt.Errorf("%s: not a number: %s", field, raw)
	}
	return &v, nil
}

// BodyMetrics is a Profile with defaults resolved.
type BodyMetrics struct {
	Age           int
	Gender        string
	HeightCM      float64
	WeightKG      float64
	ActivityLevel string
	DietaryPref   string
}

// IsEmpty reports whether no field other than ID is set. A nil profile is empty.
func (p *Profile) IsEmpty() bool {
	if p == nil {
		return true
	}
	return p.Name == nil && p.Age == nil && p.Gender == nil &&
		p.HeightCM == nil && p.WeightKG == nil && p.ActivityLevel == nil &&
		p.DietaryPref == nil && p.Allergies == nil && p.Budget == nil &&
		p.Region == nil && p.Goals == nil
}

// Metrics resolves the defaults. Gender and dietary preference are lower-cased;
// activity level is passed through as stored.
func (p *Profile) Metrics() BodyMetrics {
	m := BodyMetrics{
		Age:           DefaultAge,
		Gender:        DefaultGender,
		HeightCM:      DefaultHeightCM,
		WeightKG:      DefaultWeightKG,
		ActivityLevel: DefaultActivityLevel,
		DietaryPref:   DefaultDietaryPref,
	}
	if p == nil {
		return m
	}
	if p.Age != nil {
		m.Age = *p.Age
	}
	if p.Gender != nil {
		m.Gender = strings.ToLower(*p.Gender)
	}
	if p.HeightCM != nil {
		m.HeightCM = *p.HeightCM
	}
	if p.WeightKG != nil {
		m.WeightKG = *p.WeightKG
	}
	if p.ActivityLevel != nil {
		m.ActivityLevel = *p.ActivityLevel
	}
	if p.DietaryPref != nil && *p.DietaryPref != "" {
		m.DietaryPref = strings.ToLower(*p.DietaryPref)
	}
	return m
}

// Clone returns a deep copy so stored values can't be mutated through a
// returned pointer.
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}
	c := *p
	c.Name = cloneString(p.Name)
	c.Gender = cloneString(p.Gender)
	c.ActivityLevel = cloneString(p.ActivityLevel)
	c.DietaryPref = cloneString(p.DietaryPref)
	c.Allergies = cloneString(p.Allergies)
	c.Budget = cloneString(p.Budget)
	c.Region = cloneString(p.Region)
	c.Goals = cloneString(p.Goals)
	if p.Age != nil {
		age := *p.Age
		c.Age = &age
	}
	if p.HeightCM != nil {
		h := *p.HeightCM
		c.HeightCM = &h
	}
	if p.WeightKG != nil {
		w := *p.WeightKG
		c.WeightKG = &w
	}
	return &c
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// String, Int and Float return pointers to their argument, for building
// profiles in code.
func String(s string) *string { return &s }

func Int(i int) *int { return &i }

func Float(f float64) *float64 { return &f }
