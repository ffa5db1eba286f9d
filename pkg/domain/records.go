package domain

// RecordRef returns the id of a ledger record and the work it belongs to. For
// a Work both values are its own id; users carry no work. Unknown values yield
// empty strings.
func RecordRef(record any) (id, workID string) {
	switch r := record.(type) {
	case User:
		return r.ID, ""
	case Work:
		return r.ID, r.ID
	case Step:
		return r.ID, r.WorkID
	case Expense:
		return r.ID, r.WorkID
	case Material:
		return r.ID, r.WorkID
	case Collaborator:
		return r.ID, r.WorkID
	case Supplier:
		return r.ID, r.WorkID
	case Photo:
		return r.ID, r.WorkID
	case File:
		return r.ID, r.WorkID
	case Notification:
		return r.ID, r.WorkID
	default:
		return "", ""
	}
}

// ChangeRef resolves the record a change applies to, preferring the after image.
func ChangeRef(c Change) (id, workID string) {
	if c.After != nil {
		if id, workID = RecordRef(c.After); id != "" {
			return id, workID
		}
	}
	return RecordRef(c.Before)
}
