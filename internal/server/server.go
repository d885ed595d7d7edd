// Package server serves the stream device over HTTP and advertises it with mDNS.
package server

import (
	"context"
	"errors"
	"fmt"
	"github.com/callebjorkell/lcd-chardev/internal/chardev"
	"github.com/callebjorkell/lcd-chardev/internal/lcd"
	"github.com/enbility/zeroconf/v3"
	log "github.com/sirupsen/logrus"
	"io"
	"net"
	"net/http"
	"sync"
	"time"
)

const (
	// ServiceType is the mDNS service the server is advertised as.
	ServiceType = "_lcdchardev._tcp"
	// Domain is the mDNS domain the service is registered in.
	Domain = "local"

	maxBody = 4096
)

// Device opens streams on the display.
type Device interface {
	Open() (*chardev.Stream, error)
}

// Display is the part of the LCD the server drives directly.
type Display interface {
	Reset()
	Print(l lcd.Line, msg string)
}

type Server struct {
	dev     Device
	display Display
	server  *http.Server

	mu   sync.Mutex
	mdns *zeroconf.Server
}

func NewServer(addr string, dev Device, display Display) *Server {
	s := &Server{
		dev:     dev,
		display: display,
	}
	s.server = &http.Server{Addr: addr, Handler: s.Handler()}
	return s
}

// Handler returns the routes of the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", textForm)
	mux.HandleFunc("/form", s.formWriter)
	mux.HandleFunc("/lcd", s.serveLCD)
	return mux
}

// Listen serves until Close is called.
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve serves on ln until Close is called.
func (s *Server) Serve(ln net.Listener) error {
	log.Infof("Starting server on %v.", ln.Addr())
	s.showAddress(ln.Addr())

	err := s.server.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Advertise announces the server on the local network under the given instance name.
func (s *Server) Advertise(instance string, port int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mdns != nil {
		s.mdns.Shutdown()
	}
	server, err := zeroconf.Register(instance, ServiceType, Domain, port, []string{"path=/lcd"}, nil)
	if err != nil {
		return fmt.Errorf("failed to register mDNS service: %w", err)
	}
	log.Infof("Advertising %v as %v.%v", instance, ServiceType, Domain)
	s.mdns = server
	return nil
}

func (s *Server) Close() error {
	s.mu.Lock()
	if s.mdns != nil {
		s.mdns.Shutdown()
		s.mdns = nil
	}
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	log.Debug("Closing LCD server...")
	return s.server.Shutdown(ctx)
}

func (s *Server) serveLCD(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.read(w)
	case http.MethodPost, http.MethodPut:
		body, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		// nothing past maxBody can be rendered, but it still counts as written
		rest, err := io.Copy(io.Discard, r.Body)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		s.write(w, body, rest)
	case http.MethodDelete:
		s.reset(w)
	default:
		w.Header().Set("Allow", "GET, POST, PUT, DELETE")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) open(w http.ResponseWriter) *chardev.Stream {
	stream, err := s.dev.Open()
	switch {
	case err == nil:
		return stream
	case errors.Is(err, chardev.ErrBusy):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, chardev.ErrDetached):
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
	default:
		log.Warn("Unable to open device: ", err)
		w.WriteHeader(http.StatusInternalServerError)
	}
	return nil
}

func (s *Server) read(w http.ResponseWriter) {
	stream := s.open(w)
	if stream == nil {
		return
	}
	defer stream.Close()

	msg, err := io.ReadAll(stream)
	if err != nil {
		log.Warn("Unable to read device: ", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write(msg)
}

// write renders body and reports it plus the dropped rest bytes as accepted.
func (s *Server) write(w http.ResponseWriter, body []byte, rest int64) {
	stream := s.open(w)
	if stream == nil {
		return
	}
	defer stream.Close()

	n, err := stream.Write(body)
	if errors.Is(err, chardev.ErrDetached) {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	if err != nil {
		log.Warn("Unable to write device: ", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusAccepted)
	fmt.Fprintf(w, "%d\n", int64(n)+rest)
}

func (s *Server) reset(w http.ResponseWriter) {
	stream := s.open(w)
	if stream == nil {
		return
	}
	defer stream.Close()

	s.display.Reset()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) showAddress(addr net.Addr) {
	stream, err := s.dev.Open()
	if err != nil {
		log.Debug("Not showing address: ", err)
		return
	}
	defer stream.Close()

	port := ""
	if tcp, ok := addr.(*net.TCPAddr); ok {
		port = fmt.Sprintf(":%d", tcp.Port)
	}
	s.display.Print(lcd.Line1, "lcdchardev")
	s.display.Print(lcd.Line2, fmt.Sprintf("@%v%v", defaultOutboundIP(), port))
}

const form = `
<html>
<body style="font-family:sans-serif; font-size:12pt; background-color: #121212; color: #eee;">
<br><br><br>
<center>
<h1>LCD</h1>
<br>
<form action="/form" method="post" autocomplete="off" novalidate>
<label for="text">Text</label>
<input type="text" name="text" size="32" maxlength="31"/>
<br><br>
<input type="submit" value="Write"/>
</form>
</center>
</body>
</html>
`

func textForm(w http.ResponseWriter, req *http.Request) {
	if req.URL.Path != "/" {
		http.NotFound(w, req)
		return
	}
	io.WriteString(w, form)
}

func (s *Server) formWriter(w http.ResponseWriter, request *http.Request) {
	if request.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if request.Header.Get("Content-Type") != "application/x-www-form-urlencoded" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	request.Body = http.MaxBytesReader(w, request.Body, maxBody)
	if err := request.ParseForm(); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if !request.Form.Has("text") {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	log.Info("Text submitted.")
	// the device drops the last byte of every write
	s.write(w, append([]byte(request.Form.Get("text")), 0), 0)
}

func defaultOutboundIP() string {
	// Fake an outbound UDP connection (any IP is fine) and read the IP of the interface that this
	// machine would use as the default route to make that connection.
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return "unknown address"
	}
	defer conn.Close()

	localAddr := conn.LocalAddr().(*net.UDPAddr)

	return localAddr.IP.String()
}
