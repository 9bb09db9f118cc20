package nvram

import "fmt"

// MissingError reports an NV item that does not exist on the device.
type MissingError struct {
	Item string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("nvram: item %s does not exist", e.Item)
}

// MismatchError reports a post-restore verification read that did not
// return the bytes just written.
type MismatchError struct {
	Item string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("nvram: item %s read back different bytes after restore", e.Item)
}
