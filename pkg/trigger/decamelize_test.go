package trigger

import "testing"

func TestDecamelize(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"helloWorld":       "hello World",
		"HelloWorld":       "hello World",
		"hello_world":      "hello World",
		"hello-big_world":  "hello Big World",
		"parseHTTP2":       "parse H T T P 2",
		"getUserByID":      "get User By I D",
		"already split":    "already Split",
		"lowercase":        "lowercase",
		"42":               "4 2",
		"3.14":             "3. 1 4",
		"123456":           "1 2 3 4 5 6",
		"straßeÖffnen":     "straßeÖffnen",
		"straße_öffnen":    "straßeÖffnen",
		"   ":              "   ",
		"trailing_":        "trailing",
		"snake__case__id":  "snake Case Id",
		"名前Value":          "名前 Value",
		"version2release":  "version 2release",
		"x":                "x",
		"":                 "",
	}
	for in, want := range tests {
		if got := Decamelize(in); got != want {
			t.Fatalf("Decamelize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCamelizeKeepsNumbers(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"42", "3.14", " 7 ", "   "} {
		if got := camelize(in); got != in {
			t.Fatalf("camelize(%q) = %q, want it unchanged", in, got)
		}
	}
}
