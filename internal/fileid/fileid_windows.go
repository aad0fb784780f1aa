//go:build windows

package fileid

import (
	"os"

	"golang.org/x/sys/windows"
)

// platformID holds the (volume serial, file index) pair Windows uses to
// identify a file's storage independent of its path.
type platformID struct {
	volumeSerial uint32
	fileIndex    uint64
}

// getPlatformID opens the file with FILE_FLAG_BACKUP_SEMANTICS so that
// directories (which CreateFile refuses to open normally) are queryable
// too, then reads its identity via GetFileInformationByHandle.
func getPlatformID(path string, _ os.FileInfo) (platformID, bool) {
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return platformID{}, false
	}

	h, err := windows.CreateFile(
		p,
		0,
		windows.FILE_SHARE_READ|windows.FILE_SHARE_WRITE|windows.FILE_SHARE_DELETE,
		nil,
		windows.OPEN_EXISTING,
		windows.FILE_FLAG_BACKUP_SEMANTICS,
		0,
	)
	if err != nil {
		return platformID{}, false
	}
	defer func() { _ = windows.CloseHandle(h) }()

	var info windows.ByHandleFileInformation
	if err := windows.GetFileInformationByHandle(h, &info); err != nil {
		return platformID{}, false
	}

	return platformID{
		volumeSerial: info.VolumeSerialNumber,
		fileIndex:    uint64(info.FileIndexHigh)<<32 | uint64(info.FileIndexLow),
	}, true
}
