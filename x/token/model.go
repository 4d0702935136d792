package token

import (
	"regexp"

	"github.com/iov-one/pact"
	"github.com/iov-one/pact/codec"
	"github.com/iov-one/pact/errors"
	"github.com/iov-one/pact/orm"
)

// BucketName is where we store the accounts
const BucketName = "token"

// IsTicker checks if the string is a valid currency code: three upper case
// letters optionally followed by a letter or a digit.
var IsTicker = regexp.MustCompile(`^[A-Z]{3}[A-Z0-9]?$`).MatchString

// Account holds the balance of a single ticker.
type Account struct {
	Owner  pact.Address `json:"owner"`
	Ticker string       `json:"ticker"`
	Amount uint64       `json:"amount"`
}

var _ orm.Model = (*Account)(nil)

// Validate returns an error if any of the fields is malformed.
func (a *Account) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Owner", a.Owner.Validate())
	if !IsTicker(a.Ticker) {
		errs = errors.Append(errs, errors.Field("Ticker", errors.ErrCurrency, "%q", a.Ticker))
	}
	return errs
}

func (a *Account) Marshal() ([]byte, error) {
	return codec.NewEncoder().
		Bytes(1, a.Owner).
		String(2, a.Ticker).
		Uint64(3, a.Amount).
		Result()
}

func (a *Account) Unmarshal(raw []byte) error {
	*a = Account{}
	d := codec.NewDecoder(raw)
	for d.Next() {
		switch d.Field() {
		case 1:
			a.Owner = d.Bytes()
		case 2:
			a.Ticker = d.String()
		case 3:
			a.Amount = d.Uint64()
		default:
			d.Skip()
		}
	}
	return d.Err()
}

// AccountAddress returns the address of the account that owner holds for
// given ticker.
func AccountAddress(owner pact.Address, ticker string) pact.Address {
	data := make([]byte, 0, len(owner)+len(ticker))
	data = append(data, owner...)
	data = append(data, ticker...)
	return pact.NewCondition("token", "account", data).Address()
}

// Bucket stores accounts keyed by their address.
type Bucket struct {
	orm.ModelBucket
}

// NewBucket returns a bucket for token accounts.
func NewBucket() Bucket {
	return Bucket{ModelBucket: orm.NewModelBucket(BucketName)}
}

// RegisterQuery will register this bucket as "/tokens"
func RegisterQuery(qr pact.QueryRouter) {
	NewBucket().Register("tokens", qr)
}
