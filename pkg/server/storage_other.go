//go:build !unix

package server

import "errors"

func getStorageInfo(string) (StorageInfo, error) {
	return StorageInfo{}, errors.New("storage usage is not supported on this platform")
}
