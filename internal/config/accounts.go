package config

import (
	"fmt"
	"log/slog"

	"github.com/spf13/viper"
)

// DefaultPayDay is the day-of-month the savings derivative anchors to
// when the configuration does not specify one.
const DefaultPayDay = 28

// Accounts exposes account metadata from the configuration file. Every
// lookup falls back to a zero value when the entry is missing: unknown
// accounts are processed anonymously, never rejected.
type Accounts struct {
	v *viper.Viper
}

// NewAccounts reads account metadata from the global viper instance.
func NewAccounts() *Accounts {
	return &Accounts{v: viper.GetViper()}
}

// NewAccountsFrom reads account metadata from a specific viper instance.
func NewAccountsFrom(v *viper.Viper) *Accounts {
	return &Accounts{v: v}
}

// Name returns the display name configured for an account, or "" when
// none is configured.
func (a *Accounts) Name(accountID string) string {
	key := fmt.Sprintf("accounts.names.%s", accountID)
	if !a.v.IsSet(key) {
		slog.Warn("No name configured for account", "account", accountID)
		return ""
	}
	return a.v.GetString(key)
}

// IsSavings reports whether an account is flagged as a savings account.
// Unflagged accounts default to false.
func (a *Accounts) IsSavings(accountID string) bool {
	return a.v.GetBool(fmt.Sprintf("accounts.savings.%s", accountID))
}

// SavingsExclusionTag returns the tag marking transactions excluded from
// the available-savings figure.
func (a *Accounts) SavingsExclusionTag() string {
	return a.v.GetString("accounts.savings_exclusion_tag")
}

// PayDay returns the configured pay day-of-month.
func (a *Accounts) PayDay() int {
	day := a.v.GetInt("accounts.pay_day")
	if day < 1 || day > 28 {
		if day != 0 {
			slog.Warn("Configured pay day out of range, using default",
				"pay_day", day, "default", DefaultPayDay)
		}
		return DefaultPayDay
	}
	return day
}

// StorageDir returns the directory holding the per-account databases.
func (a *Accounts) StorageDir() string {
	dir := a.v.GetString("storage.dir")
	if dir == "" {
		return "db"
	}
	return ExpandPath(dir)
}
