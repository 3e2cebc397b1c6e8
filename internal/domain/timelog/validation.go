package timelog

import "strings"

// ValidateStartInput validates fields required to start a timer.
func ValidateStartInput(id Identity, req StartRequest) error {
	if strings.TrimSpace(id.UserID) == "" {
		return ErrInvalidInput
	}
	if strings.TrimSpace(id.OrgID) == "" {
		return ErrInvalidInput
	}
	if req.TaskID != nil && strings.TrimSpace(*req.TaskID) == "" {
		return ErrInvalidInput
	}
	return nil
}

// ValidateIdentity checks that both halves of the owning pair are present.
func ValidateIdentity(id Identity) error {
	if strings.TrimSpace(id.UserID) == "" || strings.TrimSpace(id.OrgID) == "" {
		return ErrInvalidInput
	}
	return nil
}
