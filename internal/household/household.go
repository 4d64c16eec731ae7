// Package household assembles the structured household description consumed
// by the microsimulation engine from primitive form inputs.
package household

import (
	"fmt"
	"strings"
)

// DefaultChildAge is the fixed age assigned to every generated child entry.
const DefaultChildAge = 5

// Entity identifiers and group names used throughout a situation. The
// engine only requires that references are consistent, but keeping the
// original names makes traces and raw payloads readable.
const (
	PrimaryPerson = "you"
	SpousePerson  = "spouse"

	familyGroup      = "your family"
	maritalUnitGroup = "your marital unit"
	taxUnitGroup     = "your tax unit"
	householdGroup   = "your household"
)

// ValidStates enumerates the accepted state codes for the household's
// state_name attribute.
var ValidStates = []string{"CA", "NY", "TX", "FL", "IL"}

// IsValidState reports whether code is an accepted state code.
func IsValidState(code string) bool {
	for _, s := range ValidStates {
		if s == code {
			return true
		}
	}
	return false
}

// TimedAmounts maps a period (e.g. "2023") to a numeric attribute value.
type TimedAmounts map[string]float64

// TimedStrings maps a period to a string attribute value.
type TimedStrings map[string]string

// Person carries the time-indexed attributes of one household member.
type Person struct {
	Age              TimedAmounts `json:"age"`
	EmploymentIncome TimedAmounts `json:"employment_income"`
}

// Group is a named entity grouping listing its member person identifiers.
type Group struct {
	Members []string `json:"members"`
}

// HouseholdGroup is the households grouping, which additionally carries the
// time-indexed state code.
type HouseholdGroup struct {
	Members   []string     `json:"members"`
	StateName TimedStrings `json:"state_name"`
}

// Situation is the full household description sent to the engine. Field
// names match the engine's wire format.
type Situation struct {
	People       map[string]Person         `json:"people"`
	Families     map[string]Group          `json:"families"`
	MaritalUnits map[string]Group          `json:"marital_units"`
	TaxUnits     map[string]Group          `json:"tax_units"`
	Households   map[string]HouseholdGroup `json:"households"`
}

// Inputs are the primitive values collected from one form submission.
type Inputs struct {
	Age         int
	Income      float64
	Married     bool
	NumChildren int
	State       string
	Variable    string
	Period      string
}

// Validate enforces the input-layer range constraints. The builder itself
// performs no validation; both the HTTP form decoder and the CLI call this
// before building.
func (in Inputs) Validate() error {
	if in.Age < 0 || in.Age > 120 {
		return fmt.Errorf("age must be between 0 and 120, got %d", in.Age)
	}
	if in.Income < 0 {
		return fmt.Errorf("income must be non-negative, got %v", in.Income)
	}
	if in.NumChildren < 0 || in.NumChildren > 10 {
		return fmt.Errorf("number of children must be between 0 and 10, got %d", in.NumChildren)
	}
	if !IsValidState(in.State) {
		return fmt.Errorf("unknown state %q (valid: %s)", in.State, strings.Join(ValidStates, ", "))
	}
	if strings.TrimSpace(in.Variable) == "" {
		return fmt.Errorf("variable name is required")
	}
	if strings.TrimSpace(in.Period) == "" {
		return fmt.Errorf("period is required")
	}
	return nil
}

// Build assembles a Situation from form inputs. The result is
// deterministic: identical inputs produce structurally identical
// situations. Children are named child_<i> with i 1-based and are excluded
// from the marital unit; a spouse shares the primary person's age with zero
// income and joins every group.
func Build(in Inputs) *Situation {
	s := &Situation{
		People: map[string]Person{
			PrimaryPerson: {
				Age:              TimedAmounts{in.Period: float64(in.Age)},
				EmploymentIncome: TimedAmounts{in.Period: in.Income},
			},
		},
		Families: map[string]Group{
			familyGroup: {Members: []string{PrimaryPerson}},
		},
		MaritalUnits: map[string]Group{
			maritalUnitGroup: {Members: []string{PrimaryPerson}},
		},
		TaxUnits: map[string]Group{
			taxUnitGroup: {Members: []string{PrimaryPerson}},
		},
		Households: map[string]HouseholdGroup{
			householdGroup: {
				Members:   []string{PrimaryPerson},
				StateName: TimedStrings{in.Period: in.State},
			},
		},
	}

	if in.Married {
		s.People[SpousePerson] = Person{
			Age:              TimedAmounts{in.Period: float64(in.Age)},
			EmploymentIncome: TimedAmounts{in.Period: 0},
		}
		s.appendMember(SpousePerson, true)
	}

	for i := 1; i <= in.NumChildren; i++ {
		name := fmt.Sprintf("child_%d", i)
		s.People[name] = Person{
			Age:              TimedAmounts{in.Period: DefaultChildAge},
			EmploymentIncome: TimedAmounts{in.Period: 0},
		}
		s.appendMember(name, false)
	}

	return s
}

// appendMember adds a person to the family, tax unit and household groups,
// and to the marital unit only when inMaritalUnit is set.
func (s *Situation) appendMember(name string, inMaritalUnit bool) {
	f := s.Families[familyGroup]
	f.Members = append(f.Members, name)
	s.Families[familyGroup] = f

	if inMaritalUnit {
		m := s.MaritalUnits[maritalUnitGroup]
		m.Members = append(m.Members, name)
		s.MaritalUnits[maritalUnitGroup] = m
	}

	t := s.TaxUnits[taxUnitGroup]
	t.Members = append(t.Members, name)
	s.TaxUnits[taxUnitGroup] = t

	h := s.Households[householdGroup]
	h.Members = append(h.Members, name)
	s.Households[householdGroup] = h
}
