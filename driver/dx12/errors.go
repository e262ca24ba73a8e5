// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package dx12

import (
	"fmt"

	"gviegas/neo3/driver"
)

// runtimef wraps a native hal call failure into driver.ErrFatal,
// carrying the operation name and the underlying error for logging.
func runtimef(op string, err error) error {
	driver.Logger().Error("dx12: native call failed", "op", op, "err", err)
	return fmt.Errorf("dx12: %s failed: %w", op, driver.ErrFatal)
}
