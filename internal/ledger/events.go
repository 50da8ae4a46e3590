package ledger

// EventPayload is the JSON body of an audit event row.
type EventPayload struct {
	PlayerNames []string `json:"playerNames,omitempty"`
	Bet         int      `json:"bet,omitempty"`
}
