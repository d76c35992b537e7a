package errors

import "testing"

func TestValidatePackageName(t *testing.T) {
	valid := []string{"Flask", "requests", "zope.interface", "typing_extensions", "ruamel-yaml"}
	for _, name := range valid {
		if err := ValidatePackageName(name); err != nil {
			t.Errorf("ValidatePackageName(%q) = %v, want nil", name, err)
		}
	}

	invalid := []string{
		"",
		"../../etc/passwd",
		"pkg/json",
		"pkg\\json",
		"pkg\x00",
		"pkg\nname",
		string(make([]byte, 300)),
	}
	for _, name := range invalid {
		if err := ValidatePackageName(name); err == nil {
			t.Errorf("ValidatePackageName(%q) = nil, want error", name)
		} else if !Is(err, ErrCodeInvalidPackage) {
			t.Errorf("ValidatePackageName(%q) code = %q", name, GetCode(err))
		}
	}
}

func TestValidatePythonPackageName(t *testing.T) {
	valid := []string{"Flask", "a", "A0", "zope.interface", "typing_extensions"}
	for _, name := range valid {
		if err := ValidatePythonPackageName(name); err != nil {
			t.Errorf("ValidatePythonPackageName(%q) = %v, want nil", name, err)
		}
	}

	invalid := []string{"-flask", "flask-", ".flask", "fla sk", "fl@sk"}
	for _, name := range invalid {
		if err := ValidatePythonPackageName(name); err == nil {
			t.Errorf("ValidatePythonPackageName(%q) = nil, want error", name)
		}
	}
}

func TestValidateURL(t *testing.T) {
	if err := ValidateURL("https://pypi.org/pypi"); err != nil {
		t.Errorf("https URL rejected: %v", err)
	}
	if err := ValidateURL("http://localhost:8080"); err != nil {
		t.Errorf("http URL rejected: %v", err)
	}
	for _, u := range []string{"", "ftp://example.com", "file:///etc/passwd"} {
		if err := ValidateURL(u); err == nil {
			t.Errorf("ValidateURL(%q) = nil, want error", u)
		}
	}
}
