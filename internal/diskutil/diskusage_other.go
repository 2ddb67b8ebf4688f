//go:build !unix

package diskutil

import "os"

func usageFromFile(f *os.File) (Usage, error) {
	info, err := f.Stat()
	if err != nil {
		return 0, err
	}
	return Usage(info.Size()), nil
}
