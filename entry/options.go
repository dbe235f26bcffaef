package entry

import (
	"context"
	"time"

	"github.com/Abraxas-365/wahax/logx"
	"github.com/Abraxas-365/wahax/phonex"
	"github.com/Abraxas-365/wahax/storex"
	"github.com/Abraxas-365/wahax/validatex"
)

// OptionsInput edits the mutable options of an existing entry. Connection
// settings stay fixed after setup.
type OptionsInput struct {
	// Recipients is a comma-separated list replacing the default targets
	Recipients string `json:"recipients"`

	SessionName string `json:"session_name" validatex:"max=64"`
}

// OptionsFlow updates an entry's options. Formats are re-validated; no
// connectivity check runs, since the server connection is untouched.
type OptionsFlow struct {
	store Store
}

// NewOptionsFlow creates an options flow over a store
func NewOptionsFlow(store Store) *OptionsFlow {
	return &OptionsFlow{store: store}
}

// UpdateOptions applies new options to an entry and persists it
func (f *OptionsFlow) UpdateOptions(ctx context.Context, entryID string, input OptionsInput) (*ConfigEntry, error) {
	if err := validatex.Validate(input); err != nil {
		return nil, Registry.NewWithCause(ErrInvalidFormat, err)
	}

	recipients, err := phonex.NormalizeAll(phonex.SplitList(input.Recipients))
	if err != nil {
		return nil, Registry.NewWithCause(ErrInvalidFormat, err)
	}

	configEntry, err := f.store.FindByID(ctx, entryID)
	if err != nil {
		if storex.IsRecordNotFound(err) {
			return nil, err
		}
		return nil, Registry.NewWithCause(ErrUnknown, err)
	}

	configEntry.DefaultRecipients = recipients
	if input.SessionName != "" {
		configEntry.SessionName = input.SessionName
	}
	configEntry.UpdatedAt = time.Now()

	updated, err := f.store.Update(ctx, entryID, configEntry)
	if err != nil {
		return nil, Registry.NewWithCause(ErrUnknown, err)
	}

	logx.Info("Updated options for entry %s", entryID)
	return &updated, nil
}
