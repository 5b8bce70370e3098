package dynamo

import (
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/iyhunko/product-catalog-api/internal/model"
	"github.com/shopspring/decimal"
)

// DynamoDB stores numbers as exact decimal strings while the API speaks
// float64. Every number crosses that boundary here and nowhere else.

// encodeNumber renders f as the shortest decimal string that parses back to f.
func encodeNumber(f float64) string {
	return decimal.NewFromFloat(f).String()
}

// decodeNumber parses a DynamoDB number into the nearest float64.
func decodeNumber(s string) (float64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q: %w", s, err)
	}
	return d.InexactFloat64(), nil
}

func marshalItem(p model.Product) (map[string]types.AttributeValue, error) {
	item := make(map[string]types.AttributeValue, len(p))
	for k, v := range p {
		av, err := toAttributeValue(v)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
		item[k] = av
	}
	return item, nil
}

func unmarshalItem(item map[string]types.AttributeValue) (model.Product, error) {
	p := make(model.Product, len(item))
	for k, av := range item {
		v, err := fromAttributeValue(av)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
		p[k] = v
	}
	return p, nil
}

func toAttributeValue(v any) (types.AttributeValue, error) {
	switch val := v.(type) {
	case nil:
		return &types.AttributeValueMemberNULL{Value: true}, nil
	case string:
		return &types.AttributeValueMemberS{Value: val}, nil
	case bool:
		return &types.AttributeValueMemberBOOL{Value: val}, nil
	case float64:
		return &types.AttributeValueMemberN{Value: encodeNumber(val)}, nil
	case float32:
		return &types.AttributeValueMemberN{Value: decimal.NewFromFloat32(val).String()}, nil
	case int:
		return &types.AttributeValueMemberN{Value: decimal.NewFromInt(int64(val)).String()}, nil
	case int64:
		return &types.AttributeValueMemberN{Value: decimal.NewFromInt(val).String()}, nil
	case json.Number:
		d, err := decimal.NewFromString(val.String())
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", val, err)
		}
		return &types.AttributeValueMemberN{Value: d.String()}, nil
	case decimal.Decimal:
		return &types.AttributeValueMemberN{Value: val.String()}, nil
	case model.Product:
		return toMapValue(val)
	case map[string]any:
		return toMapValue(val)
	case []any:
		list := make([]types.AttributeValue, 0, len(val))
		for i, elem := range val {
			av, err := toAttributeValue(elem)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			list = append(list, av)
		}
		return &types.AttributeValueMemberL{Value: list}, nil
	case []byte:
		return &types.AttributeValueMemberB{Value: val}, nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", v)
	}
}

func toMapValue(m map[string]any) (types.AttributeValue, error) {
	out := make(map[string]types.AttributeValue, len(m))
	for k, elem := range m {
		av, err := toAttributeValue(elem)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		out[k] = av
	}
	return &types.AttributeValueMemberM{Value: out}, nil
}

func fromAttributeValue(av types.AttributeValue) (any, error) {
	switch val := av.(type) {
	case *types.AttributeValueMemberS:
		return val.Value, nil
	case *types.AttributeValueMemberN:
		return decodeNumber(val.Value)
	case *types.AttributeValueMemberBOOL:
		return val.Value, nil
	case *types.AttributeValueMemberNULL:
		return nil, nil
	case *types.AttributeValueMemberM:
		m := make(map[string]any, len(val.Value))
		for k, elem := range val.Value {
			v, err := fromAttributeValue(elem)
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", k, err)
			}
			m[k] = v
		}
		return m, nil
	case *types.AttributeValueMemberL:
		list := make([]any, 0, len(val.Value))
		for i, elem := range val.Value {
			v, err := fromAttributeValue(elem)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			list = append(list, v)
		}
		return list, nil
	case *types.AttributeValueMemberB:
		return val.Value, nil
	case *types.AttributeValueMemberSS:
		list := make([]any, 0, len(val.Value))
		for _, s := range val.Value {
			list = append(list, s)
		}
		return list, nil
	case *types.AttributeValueMemberNS:
		list := make([]any, 0, len(val.Value))
		for _, s := range val.Value {
			f, err := decodeNumber(s)
			if err != nil {
				return nil, err
			}
			list = append(list, f)
		}
		return list, nil
	case *types.AttributeValueMemberBS:
		list := make([]any, 0, len(val.Value))
		for _, b := range val.Value {
			list = append(list, b)
		}
		return list, nil
	default:
		return nil, fmt.Errorf("unsupported attribute value %T", av)
	}
}
