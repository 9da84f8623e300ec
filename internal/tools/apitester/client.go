package apitester

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"syscall"
	"time"
)

// ErrForbiddenAddress адрес назначения закрыт для запросов с сервера.
var ErrForbiddenAddress = errors.New("requests to private or local addresses are not allowed")

// sharedAddressSpace 100.64.0.0/10, адреса операторского NAT.
var sharedAddressSpace = netip.MustParsePrefix("100.64.0.0/10")

// Forbidden сообщает, закрыт ли адрес: loopback, частные сети,
// link-local (включая 169.254.169.254), multicast и неуказанный адрес.
func Forbidden(addr netip.Addr) bool {
	addr = addr.Unmap()
	return addr.IsLoopback() ||
		addr.IsPrivate() ||
		addr.IsLinkLocalUnicast() ||
		addr.IsLinkLocalMulticast() ||
		addr.IsInterfaceLocalMulticast() ||
		addr.IsMulticast() ||
		addr.IsUnspecified() ||
		sharedAddressSpace.Contains(addr)
}

// guard проверяет уже разрешённый адрес перед установкой соединения,
// поэтому подмена DNS между проверкой и подключением не помогает.
func guard(network, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrForbiddenAddress, address)
	}
	addr, err := netip.ParseAddr(host)
	if err != nil || Forbidden(addr) {
		return fmt.Errorf("%w: %s", ErrForbiddenAddress, host)
	}
	return nil
}

// NewClient создаёт HTTP-клиент для запросов пользователя.
// Без allowPrivate клиент не подключается к локальным и частным адресам.
// Прокси из окружения не используется: иначе проверялся бы адрес прокси.
func NewClient(timeout time.Duration, allowPrivate bool) *http.Client {
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	if !allowPrivate {
		dialer.Control = guard
	}
	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: time.Second,
	}
	return &http.Client{Timeout: timeout, Transport: transport}
}
