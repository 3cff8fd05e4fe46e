//go:build !linux

package base

// pinToCPUs is not supported on this platform, the mask is ignored
func pinToCPUs(mask int) error {
	Logger.Debugf("cpu affinity %#x ignored on this platform", mask)
	return nil
}
