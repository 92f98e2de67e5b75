package fields

// Column vocabularies map normalized (trimmed, lowercased) header names to
// canonical field names. Injected at engine construction so vocabularies for
// locale or format variants can coexist.

func defaultComparableColumns() map[string]string {
	return map[string]string{
		"address":          "address",
		"property address": "address",
		"comp address":     "address",
		"street address":   "address",
		"sale price":       "sale_price",
		"sold price":       "sale_price",
		"closing price":    "sale_price",
		"list price":       "list_price",
		"sale date":        "sale_date",
		"sold date":        "sale_date",
		"close date":       "sale_date",
		"sqft":             "square_feet",
		"square feet":      "square_feet",
		"gla":              "square_feet",
		"beds":             "bedrooms",
		"bedrooms":         "bedrooms",
		"br":               "bedrooms",
		"baths":            "bathrooms",
		"bathrooms":        "bathrooms",
		"ba":               "bathrooms",
		"year built":       "year_built",
		"dom":              "days_on_market",
		"days on market":   "days_on_market",
		"distance":         "distance",
		"proximity":        "distance",
		"condition":        "condition",
	}
}

func defaultRepairColumns() map[string]string {
	return map[string]string{
		"repair item":        "description",
		"item":               "description",
		"description":        "description",
		"repair":             "description",
		"repair description": "description",
		"work item":          "description",
		"cost":               "estimated_cost",
		"estimated cost":     "estimated_cost",
		"estimate":           "estimated_cost",
		"amount":             "estimated_cost",
		"repair cost":        "estimated_cost",
		"category":           "category",
		"type":               "category",
		"priority":           "priority",
		"qty":                "quantity",
		"quantity":           "quantity",
		"notes":              "notes",
		"comments":           "notes",
	}
}
