package contacts

import "testing"

func TestPartnerClassification(t *testing.T) {
	c := NewClassifier()
	cases := []string{"Bae", "❤️ Alex", "My Love", "Hubby 💍"}
	for _, name := range cases {
		if got := c.Classify(Input{Name: name}); got != CategoryPartner {
			t.Errorf("Classify(%q) = %q, want Partner", name, got)
		}
	}
}

func TestPartnerOverridesOrganization(t *testing.T) {
	c := NewClassifier()
	cases := []Input{
		{Name: "Bae", Organization: "Acme Corp"},
		{Name: "❤️ Alex", Organization: "Tech Inc"},
		{Name: "My Love", Organization: "Business LLC"},
		{Name: "Hubby 💍", Organization: "Company XYZ"},
	}
	for _, input := range cases {
		if got := c.Classify(input); got != CategoryPartner {
			t.Errorf("Classify(%+v) = %q, want Partner (must override organization)", input, got)
		}
	}
}

func TestCloseFamilyClassification(t *testing.T) {
	c := NewClassifier()
	cases := []string{"Mom", "Dad", "ICE Mom", "Grandma"}
	for _, name := range cases {
		if got := c.Classify(Input{Name: name}); got != CategoryCloseFamily {
			t.Errorf("Classify(%q) = %q, want CloseFamily", name, got)
		}
	}
}

func TestProfessionalClassification(t *testing.T) {
	c := NewClassifier()

	if got := c.Classify(Input{Name: "Sarah", Organization: "Acme Inc"}); got != CategoryProfessional {
		t.Fatalf("organization presence: got %q, want Professional", got)
	}

	cases := []string{"Dr. Smith", "Prof. Johnson", "John Smith, MD", "Jane Doe PhD"}
	for _, name := range cases {
		if got := c.Classify(Input{Name: name}); got != CategoryProfessional {
			t.Errorf("Classify(%q) = %q, want Professional", name, got)
		}
	}
}

func TestCasualPeerClassification(t *testing.T) {
	c := NewClassifier()
	cases := []string{"dave from gym", "Mike 🍺", "alex lol"}
	for _, name := range cases {
		if got := c.Classify(Input{Name: name}); got != CategoryCasualPeer {
			t.Errorf("Classify(%q) = %q, want CasualPeer", name, got)
		}
	}
}

func TestFormalNeutralClassification(t *testing.T) {
	c := NewClassifier()
	cases := []string{"John Smith", "Uber Driver", "Plumber"}
	for _, name := range cases {
		if got := c.Classify(Input{Name: name}); got != CategoryFormalNeutral {
			t.Errorf("Classify(%q) = %q, want FormalNeutral", name, got)
		}
	}
}

func TestBatchClassification(t *testing.T) {
	c := NewClassifier()
	inputs := []Input{
		{Name: "Mom"},
		{Name: "❤️ Alex"},
		{Name: "Sarah", Organization: "Acme Inc"},
		{Name: "dave from gym"},
		{Name: "John Smith"},
	}

	result := c.ClassifyBatch(inputs)

	want := map[string]Category{
		"Mom":           CategoryCloseFamily,
		"❤️ Alex":       CategoryPartner,
		"Sarah":         CategoryProfessional,
		"dave from gym": CategoryCasualPeer,
		"John Smith":    CategoryFormalNeutral,
	}
	for name, category := range want {
		if result[name] != category {
			t.Errorf("result[%q] = %q, want %q", name, result[name], category)
		}
	}
}

func TestRecordInteractionAndFrequentContacts(t *testing.T) {
	c := NewClassifier()
	c.GetOrCreateContact(Input{Name: "Mom"})
	c.GetOrCreateContact(Input{Name: "Dad"})

	c.RecordInteraction("Mom")
	c.RecordInteraction("Mom")
	c.RecordInteraction("Dad")

	frequent := c.GetFrequentContacts(10)
	if len(frequent) != 2 || frequent[0].Name != "Mom" || frequent[0].Frequency != 2 {
		t.Fatalf("frequent = %+v, want Mom first with frequency 2", frequent)
	}
}
