package catalog

import (
	"fmt"
	"strings"

	goeval "github.com/edisonguo/govaluate"

	proc "github.com/nci/gsky-ndvi/processor"
)

var filterVariables = map[string]struct{}{
	"id":          struct{}{},
	"collection":  struct{}{},
	"platform":    struct{}{},
	"cloud_cover": struct{}{},
	"year":        struct{}{},
	"month":       struct{}{},
	"doy":         struct{}{},
}

// ParseSceneFilter compiles a boolean expression over scene attributes,
// e.g. "platform == 'Sentinel-2A' && month >= 4". An empty expression
// yields a nil filter.
func ParseSceneFilter(expression string) (func(proc.CatalogItem) (bool, error), error) {
	if len(strings.TrimSpace(expression)) == 0 {
		return nil, nil
	}

	expr, err := goeval.NewEvaluableExpression(expression)
	if err != nil {
		return nil, err
	}

	for _, token := range expr.Tokens() {
		if token.Kind == goeval.VARIABLE {
			varName, ok := token.Value.(string)
			if !ok {
				return nil, fmt.Errorf("variable token '%v' failed to cast string", token.Value)
			}
			if _, found := filterVariables[varName]; !found {
				return nil, fmt.Errorf("variable %v is not supported. Valid variables are %v", varName, filterVariables)
			}
		}
	}

	return func(item proc.CatalogItem) (bool, error) {
		cloudCover := 100.0
		if item.CloudCover != nil {
			cloudCover = *item.CloudCover
		}
		parameters := map[string]interface{}{
			"id":          item.ID,
			"collection":  item.Collection,
			"platform":    item.Platform,
			"cloud_cover": cloudCover,
			"year":        float64(item.Datetime.Year()),
			"month":       float64(item.Datetime.Month()),
			"doy":         float64(item.Datetime.YearDay()),
		}

		result, err := expr.Evaluate(parameters)
		if err != nil {
			return false, fmt.Errorf("scene filter: %v", err)
		}
		val, ok := result.(bool)
		if !ok {
			return false, fmt.Errorf("scene filter: result '%v' is not boolean", result)
		}
		return val, nil
	}, nil
}
