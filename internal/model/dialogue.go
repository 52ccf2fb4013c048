package model

// Phase is a step of the itinerary planning dialogue.
type Phase string

const (
	PhaseInitial             Phase = "initial"
	PhaseCollectingPlaces    Phase = "collecting_places"
	PhaseCollectingBudget    Phase = "collecting_budget"
	PhaseCollectingDuration  Phase = "collecting_duration"
	PhaseCollectingPartySize Phase = "collecting_party_size"
	PhaseComplete            Phase = "complete"
)

var phaseOrder = []Phase{
	PhaseInitial,
	PhaseCollectingPlaces,
	PhaseCollectingBudget,
	PhaseCollectingDuration,
	PhaseCollectingPartySize,
	PhaseComplete,
}

// Index returns the position of p in the dialogue order, or -1 if unknown.
func (p Phase) Index() int {
	for i, q := range phaseOrder {
		if q == p {
			return i
		}
	}
	return -1
}

// DraftSelection holds the trip parameters collected so far in a flow.
type DraftSelection struct {
	Places         []string `json:"places,omitempty"`
	BudgetInRupees int      `json:"budget_in_rupees,omitempty"`
	DurationInDays int      `json:"duration_in_days,omitempty"`
	PartySize      int      `json:"party_size,omitempty"`
}

// Clone returns a deep copy of d.
func (d DraftSelection) Clone() DraftSelection {
	if d.Places != nil {
		d.Places = append([]string(nil), d.Places...)
	}
	return d
}

// DialogueState is the dialogue position of a session.
type DialogueState struct {
	Phase Phase          `json:"phase"`
	Draft DraftSelection `json:"draft"`
}

// Clone returns a deep copy of s.
func (s DialogueState) Clone() DialogueState {
	s.Draft = s.Draft.Clone()
	return s
}
