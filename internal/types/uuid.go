package types

import (
	"fmt"
	"strings"
	"sync"

	"github.com/oklog/ulid/v2"
	"github.com/teris-io/shortid"
)

const (
	UUID_PREFIX_EVENT              = "event"
	UUID_PREFIX_METER              = "meter"
	UUID_PREFIX_CHARGE             = "charge"
	UUID_PREFIX_COMMITMENT         = "comm"
	UUID_PREFIX_FEE                = "fee"
	UUID_PREFIX_INVOICE            = "inv"
	UUID_PREFIX_WALLET             = "wallet"
	UUID_PREFIX_WALLET_TRANSACTION = "wtxn"
	UUID_PREFIX_COUPON             = "coupon"
	UUID_PREFIX_APPLIED_COUPON     = "ac"
	UUID_PREFIX_SUBSCRIPTION       = "subs"

	SHORT_ID_PREFIX_INVOICE = "IN-"
)

// GenerateUUID returns a k-sortable unique identifier
func GenerateUUID() string {
	return ulid.Make().String()
}

// GenerateUUIDWithPrefix returns a k-sortable unique identifier
// with a prefix ex inv_0ujsswThIGTUYm2K8FjOOfXtY1K
func GenerateUUIDWithPrefix(prefix string) string {
	if prefix == "" {
		return GenerateUUID()
	}
	return fmt.Sprintf("%s_%s", prefix, GenerateUUID())
}

var (
	sidGenerator *shortid.Shortid
	once         sync.Once
)

// initializeSID initializes the shortid generator once
func initializeSID() {
	var err error
	sidGenerator, err = shortid.New(1, shortid.DefaultABC, 2342)
	if err != nil {
		panic("failed to initialize shortid generator: " + err.Error())
	}
}

// GenerateShortIDWithPrefix returns a short human readable ID with a prefix,
// used for invoice numbers ex IN-XYZ12A8Q
func GenerateShortIDWithPrefix(prefix string) string {
	once.Do(initializeSID)

	id, err := sidGenerator.Generate()
	if err != nil {
		return ""
	}
	id = strings.ReplaceAll(id, "-", "")

	return fmt.Sprintf("%s%s", prefix, strings.ToUpper(id))
}
