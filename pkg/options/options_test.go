package options

import "testing"

func TestDefaultOptionsValidate(t *testing.T) {
	o := NewDefaultOptions()
	if err := o.Validate(); err != nil {
		t.Fatalf("default options should validate, got %v", err)
	}
}

func TestValidateRejectsNonPositiveSizeMultiplier(t *testing.T) {
	o := NewDefaultOptions()
	o.SizeMultiplier = 0
	if err := o.Validate(); err == nil {
		t.Fatal("expected an error for a zero size multiplier")
	}
}

func TestValidateRejectsEmptyPackagePrefix(t *testing.T) {
	o := NewDefaultOptions()
	o.PackagePrefix = "   "
	if err := o.Validate(); err == nil {
		t.Fatal("expected an error for a blank package prefix")
	}
}

func TestWithSizeMultiplierIgnoresNonPositiveValues(t *testing.T) {
	o := NewDefaultOptions()
	WithSizeMultiplier(-1)(&o)
	if o.SizeMultiplier != DefaultSizeMultiplier {
		t.Fatalf("expected default to survive a negative override, got %v", o.SizeMultiplier)
	}
}
