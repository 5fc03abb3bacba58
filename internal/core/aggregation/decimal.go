package aggregation

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// ToDecimal converts a numeric value taken from a source document or from calculator
// logic into an exact decimal. JSON numbers unmarshal to float64 in Go, which is the
// common path; strings must hold a valid decimal literal.
func ToDecimal(v interface{}) (decimal.Decimal, error) {
	switch val := v.(type) {
	case decimal.Decimal:
		return val, nil
	case *decimal.Decimal:
		if val == nil {
			return decimal.Zero, fmt.Errorf("nil decimal")
		}
		return *val, nil
	case float64:
		return decimal.NewFromFloat(val), nil
	case float32:
		return decimal.NewFromFloat32(val), nil
	case int:
		return decimal.NewFromInt(int64(val)), nil
	case int64:
		return decimal.NewFromInt(val), nil
	case int32:
		return decimal.NewFromInt32(val), nil
	case int16:
		return decimal.NewFromInt(int64(val)), nil
	case int8:
		return decimal.NewFromInt(int64(val)), nil
	case uint:
		return decimal.NewFromBigInt(new(big.Int).SetUint64(uint64(val)), 0), nil
	case uint32:
		return decimal.NewFromInt(int64(val)), nil
	case uint16:
		return decimal.NewFromInt(int64(val)), nil
	case uint8:
		return decimal.NewFromInt(int64(val)), nil
	case uint64:
		return decimal.NewFromBigInt(new(big.Int).SetUint64(val), 0), nil
	case json.Number:
		return decimal.NewFromString(val.String())
	case string:
		d, err := decimal.NewFromString(val)
		if err != nil {
			return decimal.Zero, fmt.Errorf("not a number: %q", val)
		}
		return d, nil
	}
	return decimal.Zero, fmt.Errorf("unsupported numeric type %T", v)
}
