//go:build !linux

package streamcsv

import "os"

func adviseSequential(*os.File) error {
	return nil
}
