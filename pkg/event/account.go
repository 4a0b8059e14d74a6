package event

// AccountEvent reports an account-level change, such as a privacy settings
// update. Only the shared envelope fields are known for this family.
type AccountEvent struct {
	Meta
}

func (*AccountEvent) family() {}

func decodeAccount(payload []byte) (Event, error) {
	ev := &AccountEvent{}
	if err := unmarshalInto(payload, ev); err != nil {
		return nil, err
	}
	ev.Type = TypeAccount
	return ev, nil
}
