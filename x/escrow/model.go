package escrow

import (
	"github.com/iov-one/pact"
	"github.com/iov-one/pact/codec"
	"github.com/iov-one/pact/errors"
	"github.com/iov-one/pact/orm"
	"github.com/iov-one/pact/x/token"
)

// BucketName is where we store the escrows
const BucketName = "escrow"

// Escrow is an open offer. It is stored under the record address derived
// from the initializer and the ticker.
type Escrow struct {
	Initialized        bool
	Initializer        pact.Address
	InitializerReceive pact.Address
	Custody            pact.Address
	InitializerAmount  uint64
	TakerAmount        uint64
	// Ticker of the locked funds.
	Ticker string
	// Bump of the custodial authority derivation.
	Bump uint32
	// Funding is the account the reservation is returned to.
	Funding     pact.Address
	Reservation uint64
}

var _ orm.Model = (*Escrow)(nil)

// Validate returns an error if the record cannot be persisted.
func (e *Escrow) Validate() error {
	var errs error
	if !e.Initialized {
		errs = errors.Append(errs, errors.Field("Initialized", errors.ErrState, "must be set"))
	}
	errs = errors.AppendField(errs, "Initializer", e.Initializer.Validate())
	errs = errors.AppendField(errs, "InitializerReceive", e.InitializerReceive.Validate())
	errs = errors.AppendField(errs, "Custody", e.Custody.Validate())
	errs = errors.AppendField(errs, "Funding", e.Funding.Validate())
	if e.InitializerAmount == 0 {
		errs = errors.Append(errs, errors.Field("InitializerAmount", errors.ErrAmount, "must be positive"))
	}
	if e.TakerAmount == 0 {
		errs = errors.Append(errs, errors.Field("TakerAmount", errors.ErrAmount, "must be positive"))
	}
	if !token.IsTicker(e.Ticker) {
		errs = errors.Append(errs, errors.Field("Ticker", errors.ErrCurrency, "%q", e.Ticker))
	}
	if e.Bump > 255 {
		errs = errors.Append(errs, errors.Field("Bump", errors.ErrOverflow, "must fit in a byte"))
	}
	return errs
}

func (e *Escrow) Marshal() ([]byte, error) {
	return codec.NewEncoder().
		Bool(1, e.Initialized).
		Bytes(2, e.Initializer).
		Bytes(3, e.InitializerReceive).
		Bytes(4, e.Custody).
		Uint64(5, e.InitializerAmount).
		Uint64(6, e.TakerAmount).
		String(7, e.Ticker).
		Uint64(8, uint64(e.Bump)).
		Bytes(9, e.Funding).
		Uint64(10, e.Reservation).
		Result()
}

func (e *Escrow) Unmarshal(raw []byte) error {
	*e = Escrow{}
	d := codec.NewDecoder(raw)
	for d.Next() {
		switch d.Field() {
		case 1:
			e.Initialized = d.Bool()
		case 2:
			e.Initializer = d.Bytes()
		case 3:
			e.InitializerReceive = d.Bytes()
		case 4:
			e.Custody = d.Bytes()
		case 5:
			e.InitializerAmount = d.Uint64()
		case 6:
			e.TakerAmount = d.Uint64()
		case 7:
			e.Ticker = d.String()
		case 8:
			e.Bump = uint32(d.Uint64())
		case 9:
			e.Funding = d.Bytes()
		case 10:
			e.Reservation = d.Uint64()
		default:
			d.Skip()
		}
	}
	return d.Err()
}

// Bucket stores escrows keyed by their record address.
type Bucket struct {
	orm.ModelBucket
}

// NewBucket returns a bucket for escrow records.
func NewBucket() Bucket {
	return Bucket{ModelBucket: orm.NewModelBucket(BucketName)}
}

// Configuration of the escrow extension, stored under "_c:escrow".
type Configuration struct {
	// Reservation is charged to the initializer on top of the locked
	// amount and returned when the offer is taken.
	Reservation uint64 `json:"reservation"`
}

func (c *Configuration) Validate() error {
	return nil
}

func (c *Configuration) Marshal() ([]byte, error) {
	return codec.NewEncoder().Uint64(1, c.Reservation).Result()
}

func (c *Configuration) Unmarshal(raw []byte) error {
	*c = Configuration{}
	d := codec.NewDecoder(raw)
	for d.Next() {
		switch d.Field() {
		case 1:
			c.Reservation = d.Uint64()
		default:
			d.Skip()
		}
	}
	return d.Err()
}
