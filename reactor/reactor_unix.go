//go:build linux || darwin || freebsd || netbsd || openbsd

// File: reactor/reactor_unix.go
// Author: momentics <momentics@gmail.com>
//
// poll(2)-based readiness and raw socket calls via golang.org/x/sys/unix.

package reactor

import (
	"net"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"github.com/momentics/printsink/api"
)

// Listen binds a TCP socket to 127.0.0.1:port and starts listening.
// Port 0 selects an ephemeral port.
func Listen(port, backlog int) (*Listener, error) {
	if port < 0 || port > 65535 {
		return nil, errors.Wrapf(api.ErrInvalidArgument, "port %d", port)
	}
	if backlog <= 0 {
		backlog = DefaultBacklog
	}

	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, unix.IPPROTO_TCP)
	if err != nil {
		return nil, errors.Wrap(err, "socket create")
	}
	unix.CloseOnExec(fd)

	fail := func(err error, op string) (*Listener, error) {
		_ = unix.Close(fd)
		return nil, errors.Wrap(err, op)
	}

	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		return fail(err, "setsockopt SO_REUSEADDR")
	}
	if err := unix.Bind(fd, &unix.SockaddrInet4{Port: port, Addr: [4]byte{127, 0, 0, 1}}); err != nil {
		return fail(err, "bind 127.0.0.1:"+strconv.Itoa(port))
	}
	if err := unix.Listen(fd, backlog); err != nil {
		return fail(err, "listen")
	}
	if err := unix.SetNonblock(fd, true); err != nil {
		return fail(err, "set nonblock")
	}

	bound := port
	if sa, err := unix.Getsockname(fd); err == nil {
		if in4, ok := sa.(*unix.SockaddrInet4); ok {
			bound = in4.Port
		}
	}
	return &Listener{fd: fd, port: bound}, nil
}

// Accept takes exactly one pending connection.
func (l *Listener) Accept() (*Conn, error) {
	nfd, sa, err := unix.Accept(l.fd)
	if err != nil {
		if err == unix.EAGAIN || err == unix.EINTR {
			return nil, ErrWouldBlock
		}
		return nil, errors.Wrap(err, "accept")
	}
	unix.CloseOnExec(nfd)
	if err := unix.SetNonblock(nfd, true); err != nil {
		_ = unix.Close(nfd)
		return nil, errors.Wrap(err, "set nonblock")
	}
	return &Conn{fd: nfd, peer: sockaddrString(sa)}, nil
}

// Close releases the listening socket.
func (l *Listener) Close() error {
	return unix.Close(l.fd)
}

// Read performs a single read(2). It returns 0, nil on orderly close.
func (c *Conn) Read(p []byte) (int, error) {
	n, err := unix.Read(c.fd, p)
	if err != nil {
		if err == unix.EAGAIN || err == unix.EINTR {
			return 0, ErrWouldBlock
		}
		return 0, errors.Wrap(err, "read")
	}
	return n, nil
}

// Close releases the connection socket.
func (c *Conn) Close() error {
	return unix.Close(c.fd)
}

// Wait polls fds for readability for at most timeout and returns the ready
// descriptors. Hang-up and error conditions are reported as ready so the
// caller's next read observes them. An interrupted wait returns no events.
func Wait(fds []int, timeout time.Duration) ([]Readiness, error) {
	pfds := make([]unix.PollFd, len(fds))
	for i, fd := range fds {
		pfds[i] = unix.PollFd{Fd: int32(fd), Events: unix.POLLIN}
	}

	ms := -1
	if timeout >= 0 {
		ms = int(timeout / time.Millisecond)
		if ms == 0 && timeout > 0 {
			ms = 1
		}
	}

	n, err := unix.Poll(pfds, ms)
	if err != nil {
		if err == unix.EINTR {
			return nil, nil
		}
		return nil, errors.Wrap(err, "poll")
	}
	if n == 0 {
		return nil, nil
	}

	ready := make([]Readiness, 0, n)
	for _, p := range pfds {
		if p.Revents == 0 {
			continue
		}
		ready = append(ready, Readiness{
			Fd:       int(p.Fd),
			Readable: p.Revents&unix.POLLIN != 0,
			Hangup:   p.Revents&unix.POLLHUP != 0,
			Error:    p.Revents&(unix.POLLERR|unix.POLLNVAL) != 0,
		})
	}
	return ready, nil
}

func sockaddrString(sa unix.Sockaddr) string {
	switch a := sa.(type) {
	case *unix.SockaddrInet4:
		return net.JoinHostPort(net.IP(a.Addr[:]).String(), strconv.Itoa(a.Port))
	case *unix.SockaddrInet6:
		return net.JoinHostPort(net.IP(a.Addr[:]).String(), strconv.Itoa(a.Port))
	default:
		return "unknown"
	}
}
