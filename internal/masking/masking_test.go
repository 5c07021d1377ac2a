package masking

import "testing"

func TestMaskEmail(t *testing.T) {
	got := Mask("test.email@example.com")
	want := "t********l@e********m"
	if got != want {
		t.Errorf("Mask(email) = %q, want %q", got, want)
	}
}

func TestMaskDigitRuns(t *testing.T) {
	// First and last digit of each run survive; interior digits are starred.
	got := Mask("054-123-4567")
	want := "0*4-1*3-4**7"
	if got != want {
		t.Errorf("Mask(phone) = %q, want %q", got, want)
	}

	// Runs of up to two digits are untouched.
	if got := Mask("12"); got != "12" {
		t.Errorf("Mask(\"12\") = %q, want unchanged", got)
	}
}

func TestMaskWords(t *testing.T) {
	if got := Mask("important"); got != "i*******t" {
		t.Errorf("Mask(\"important\") = %q", got)
	}

	// Short words (<= 3 letters) are left alone by the word pass.
	if got := Mask("a cat ran"); got != "a cat ran" {
		t.Errorf("Mask(short words) = %q", got)
	}

	if got := maskWord("ab"); got != "**" {
		t.Errorf("maskWord(\"ab\") = %q, want \"**\"", got)
	}
}

func TestMaskHebrew(t *testing.T) {
	got := Mask("ירושלים")
	want := "י*****ם"
	if got != want {
		t.Errorf("Mask(hebrew) = %q, want %q", got, want)
	}
}

func TestMaskMixedText(t *testing.T) {
	got := Mask("Contact dana.levi@gmail.com or 0541234567")
	want := "C*****t d*******i@g*******m or 0********7"
	if got != want {
		t.Errorf("Mask(mixed) = %q, want %q", got, want)
	}
}

func TestMaskEmptyString(t *testing.T) {
	if got := Mask(""); got != "" {
		t.Errorf("Mask(\"\") = %q", got)
	}
}

func TestMaskDoesNotRemaskEmailOutput(t *testing.T) {
	// Output of the email pass contains '*' and '@'; the word pass must skip it.
	once := Mask("test.email@example.com")
	twice := Mask(once)
	if once != twice {
		t.Errorf("masking is not stable: %q -> %q", once, twice)
	}
}
