package inject

import "testing"

func TestComboString(t *testing.T) {
	if ComboCopy.String() != "copy" || ComboPaste.String() != "paste" {
		t.Errorf("unexpected combo names: %s %s", ComboCopy, ComboPaste)
	}
}
