package probe

import (
	"context"
	"net"
	"os"
	"runtime"

	"github.com/ovalkit/ovalkit/internal/syschar"
)

// LocalSysInfo is the default SysInfoSource: host metadata of the machine
// the scanner runs on.
func LocalSysInfo(ctx context.Context) (*syschar.SysInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	hostname, err := os.Hostname()
	if err != nil {
		return nil, err
	}

	si := &syschar.SysInfo{
		OSName:          runtime.GOOS,
		Architecture:    runtime.GOARCH,
		PrimaryHostName: hostname,
	}

	// Interface enumeration is best effort; sysinfo without interfaces is
	// still a valid sysinfo.
	ifaces, err := net.Interfaces()
	if err != nil {
		return si, nil
	}
	for _, iface := range ifaces {
		if iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		entry := syschar.Interface{Name: iface.Name, MACAddress: iface.HardwareAddr.String()}
		if addrs, err := iface.Addrs(); err == nil && len(addrs) > 0 {
			entry.IPAddress = addrs[0].String()
		}
		si.Interfaces = append(si.Interfaces, entry)
	}

	return si, nil
}
