//go:build windows

// File: reactor/reactor_windows.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// WinSock implementation: non-blocking sockets and WSAPoll readiness via
// golang.org/x/sys/windows.

package reactor

import (
	"net"
	"strconv"
	"sync"
	"syscall"
	"time"
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/windows"

	"github.com/momentics/printsink/api"
)

// WinSock values not exported by x/sys/windows.
const (
	fionbio          = 0x8004667e
	soExclusiveAddr  = ^windows.SO_REUSEADDR
	pollRdNorm       = 0x0100
	pollRdBand       = 0x0200
	pollIn           = pollRdNorm | pollRdBand
	pollErr          = 0x0001
	pollHup          = 0x0002
	pollNval         = 0x0004
	socketError      = ^uintptr(0) // SOCKET_ERROR and INVALID_SOCKET
	winsockVersion22 = 0x0202
)

var (
	modws2_32       = windows.NewLazySystemDLL("ws2_32.dll")
	procAccept      = modws2_32.NewProc("accept")
	procIoctlsocket = modws2_32.NewProc("ioctlsocket")
	procWSAPoll     = modws2_32.NewProc("WSAPoll")

	wsaOnce sync.Once
	wsaErr  error
)

// wsaPollFd mirrors WSAPOLLFD.
type wsaPollFd struct {
	fd      windows.Handle
	events  int16
	revents int16
}

func startup() error {
	wsaOnce.Do(func() {
		var d windows.WSAData
		wsaErr = windows.WSAStartup(winsockVersion22, &d)
	})
	return errors.Wrap(wsaErr, "WSAStartup")
}

func callErr(e error) error {
	if errno, ok := e.(syscall.Errno); ok && errno != 0 {
		return errno
	}
	return syscall.EINVAL
}

func wouldBlock(err error) bool {
	return err == windows.WSAEWOULDBLOCK || err == windows.WSAEINTR
}

func setNonblock(h windows.Handle) error {
	mode := uint32(1)
	r1, _, e1 := procIoctlsocket.Call(uintptr(h), uintptr(fionbio), uintptr(unsafe.Pointer(&mode)))
	if r1 != 0 {
		return callErr(e1)
	}
	return nil
}

// Listen binds a TCP socket to 127.0.0.1:port and starts listening.
// Port 0 selects an ephemeral port. The socket is bound exclusively so a
// second listener on the same port fails as it does on unix.
func Listen(port, backlog int) (*Listener, error) {
	if port < 0 || port > 65535 {
		return nil, errors.Wrapf(api.ErrInvalidArgument, "port %d", port)
	}
	if backlog <= 0 {
		backlog = DefaultBacklog
	}
	if err := startup(); err != nil {
		return nil, err
	}

	h, err := windows.Socket(windows.AF_INET, windows.SOCK_STREAM, windows.IPPROTO_TCP)
	if err != nil {
		return nil, errors.Wrap(err, "socket create")
	}

	fail := func(err error, op string) (*Listener, error) {
		_ = windows.Closesocket(h)
		return nil, errors.Wrap(err, op)
	}

	if err := windows.SetsockoptInt(h, windows.SOL_SOCKET, soExclusiveAddr, 1); err != nil {
		return fail(err, "setsockopt SO_EXCLUSIVEADDRUSE")
	}
	if err := windows.Bind(h, &windows.SockaddrInet4{Port: port, Addr: [4]byte{127, 0, 0, 1}}); err != nil {
		return fail(err, "bind 127.0.0.1:"+strconv.Itoa(port))
	}
	if err := windows.Listen(h, backlog); err != nil {
		return fail(err, "listen")
	}
	if err := setNonblock(h); err != nil {
		return fail(err, "set nonblock")
	}

	bound := port
	if sa, err := windows.Getsockname(h); err == nil {
		if in4, ok := sa.(*windows.SockaddrInet4); ok {
			bound = in4.Port
		}
	}
	return &Listener{fd: int(h), port: bound}, nil
}

// Accept takes exactly one pending connection.
func (l *Listener) Accept() (*Conn, error) {
	var rsa windows.RawSockaddrAny
	size := int32(unsafe.Sizeof(rsa))
	r1, _, e1 := procAccept.Call(uintptr(l.fd), uintptr(unsafe.Pointer(&rsa)), uintptr(unsafe.Pointer(&size)))
	if r1 == socketError {
		err := callErr(e1)
		if wouldBlock(err) {
			return nil, ErrWouldBlock
		}
		return nil, errors.Wrap(err, "accept")
	}

	h := windows.Handle(r1)
	if err := setNonblock(h); err != nil {
		_ = windows.Closesocket(h)
		return nil, errors.Wrap(err, "set nonblock")
	}

	peer := "unknown"
	if sa, err := rsa.Sockaddr(); err == nil {
		peer = sockaddrString(sa)
	}
	return &Conn{fd: int(h), peer: peer}, nil
}

// Close releases the listening socket.
func (l *Listener) Close() error {
	return windows.Closesocket(windows.Handle(l.fd))
}

// Read performs a single synchronous WSARecv. It returns 0, nil on orderly
// close.
func (c *Conn) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	buf := windows.WSABuf{Len: uint32(len(p)), Buf: &p[0]}
	var n, flags uint32
	if err := windows.WSARecv(windows.Handle(c.fd), &buf, 1, &n, &flags, nil, nil); err != nil {
		if wouldBlock(err) {
			return 0, ErrWouldBlock
		}
		return 0, errors.Wrap(err, "read")
	}
	return int(n), nil
}

// Close releases the connection socket.
func (c *Conn) Close() error {
	return windows.Closesocket(windows.Handle(c.fd))
}

// Wait polls fds for readability for at most timeout with WSAPoll and
// returns the ready sockets. Hang-up and error conditions are reported as
// ready so the caller's next read observes them.
func Wait(fds []int, timeout time.Duration) ([]Readiness, error) {
	ms := -1
	if timeout >= 0 {
		ms = int(timeout / time.Millisecond)
		if ms == 0 && timeout > 0 {
			ms = 1
		}
	}

	if len(fds) == 0 {
		// WSAPoll rejects an empty set.
		if ms > 0 {
			time.Sleep(time.Duration(ms) * time.Millisecond)
		}
		return nil, nil
	}

	pfds := make([]wsaPollFd, len(fds))
	for i, fd := range fds {
		pfds[i] = wsaPollFd{fd: windows.Handle(fd), events: pollIn}
	}

	r1, _, e1 := procWSAPoll.Call(uintptr(unsafe.Pointer(&pfds[0])), uintptr(len(pfds)), uintptr(int32(ms)))
	n := int32(r1)
	if n < 0 {
		err := callErr(e1)
		if err == windows.WSAEINTR {
			return nil, nil
		}
		return nil, errors.Wrap(err, "WSAPoll")
	}
	if n == 0 {
		return nil, nil
	}

	ready := make([]Readiness, 0, n)
	for _, p := range pfds {
		if p.revents == 0 {
			continue
		}
		ready = append(ready, Readiness{
			Fd:       int(p.fd),
			Readable: p.revents&pollIn != 0,
			Hangup:   p.revents&pollHup != 0,
			Error:    p.revents&(pollErr|pollNval) != 0,
		})
	}
	return ready, nil
}

func sockaddrString(sa windows.Sockaddr) string {
	switch a := sa.(type) {
	case *windows.SockaddrInet4:
		return net.JoinHostPort(net.IP(a.Addr[:]).String(), strconv.Itoa(a.Port))
	case *windows.SockaddrInet6:
		return net.JoinHostPort(net.IP(a.Addr[:]).String(), strconv.Itoa(a.Port))
	default:
		return "unknown"
	}
}
