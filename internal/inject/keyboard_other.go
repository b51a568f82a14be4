//go:build !darwin && !linux && !windows

package inject

func sendCombo(c Combo) error {
	return ErrUnavailable
}
