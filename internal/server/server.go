package server

import "garthbid/pkg/contextx"

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

// Server объединяет HTTP обработчики подсистем: расчёты по сделкам и
// консоль банкира.
type Server struct {
	DealServer
	BankerServer
}

func NewServer(
	dealServer DealServer,
	bankerServer BankerServer,
) Server {
	return Server{
		DealServer:   dealServer,
		BankerServer: bankerServer,
	}
}
