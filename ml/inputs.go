package ml

// CoreInput is a numeric household attribute collected by the form.
type CoreInput struct {
	Name  string
	Label string
}

// CoreInputs returns the numeric inputs in form order.
func CoreInputs() []CoreInput {
	return []CoreInput{
		{Name: "KWH", Label: "Electricity Usage (kWh)"},
		{Name: "BTUEL", Label: "Total Site Energy (BTU)"},
		{Name: "HDD65", Label: "Heating Degree Days (HDD65)"},
		{Name: "CDD65", Label: "Cooling Degree Days (CDD65)"},
		{Name: "TOTHSQFT", Label: "Heated Square Footage"},
		{Name: "TOTROOMS", Label: "Total Number of Rooms"},
		{Name: "BEDROOMS", Label: "Number of Bedrooms"},
		{Name: "NUMFRIG", Label: "Number of Refrigerators"},
		{Name: "NUMFREEZ", Label: "Number of Standalone Freezers"},
		{Name: "NUMTABLET", Label: "Number of Tablets"},
	}
}

// CoreInputNames returns the names of CoreInputs.
func CoreInputNames() []string {
	inputs := CoreInputs()
	names := make([]string, len(inputs))
	for i, in := range inputs {
		names[i] = in.Name
	}
	return names
}
