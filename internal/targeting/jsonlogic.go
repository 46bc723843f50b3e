package targeting

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/diegoholiveira/jsonlogic/v3"
)

// JSONLogicPredicate compiles a JSON Logic expression (jsonlogic.com) into
// an in-memory extension Predicate. It is a convenience for the builder
// only: the compiled closure form is what lives on a Rule, never the
// source expression — rules built this way still have no extension
// predicate after a JSON round-trip.
//
// The context is marshaled to a JSON object with its stable id, locale,
// platform and app version string as top level keys, so expressions can
// reference {"var": "locale"} etc.; axis values sit in a nested "axes"
// object and are reached as {"var": "axes.<axis>"}.
func JSONLogicPredicate(expression string) (Predicate, error) {
	if strings.TrimSpace(expression) == "" {
		return nil, fmt.Errorf("targeting: empty JSON Logic expression")
	}
	var rule any
	if err := json.Unmarshal([]byte(expression), &rule); err != nil {
		return nil, fmt.Errorf("targeting: invalid JSON Logic expression: %w", err)
	}

	return func(ctx Context) bool {
		data := contextToMap(ctx)
		dataBytes, err := json.Marshal(data)
		if err != nil {
			panic(fmt.Sprintf("targeting: marshal context: %v", err))
		}

		ruleReader := bytes.NewReader([]byte(expression))
		dataReader := bytes.NewReader(dataBytes)
		var out bytes.Buffer
		if err := jsonlogic.Apply(ruleReader, dataReader, &out); err != nil {
			panic(fmt.Sprintf("targeting: apply JSON Logic: %v", err))
		}

		var result any
		if err := json.Unmarshal(out.Bytes(), &result); err != nil {
			panic(fmt.Sprintf("targeting: unmarshal JSON Logic result: %v", err))
		}
		return isTruthy(result)
	}, nil
}

func contextToMap(ctx Context) map[string]any {
	m := map[string]any{
		"stableId": ctx.StableID.String(),
		"locale":   ctx.Locale,
		"platform": ctx.Platform,
	}
	if ctx.AppVersion != nil {
		m["appVersion"] = ctx.AppVersion.String()
	}
	axes := make(map[string]string, len(ctx.AxisValues))
	for k, v := range ctx.AxisValues {
		axes[string(k)] = string(v)
	}
	m["axes"] = axes
	return m
}

func isTruthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case float64:
		return val != 0
	case string:
		return val != ""
	case []any:
		return len(val) > 0
	case map[string]any:
		return len(val) > 0
	default:
		return true
	}
}
