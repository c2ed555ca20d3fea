package api

import (
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/sqlc-dev/pqtype"

	"github.com/coltonsurfer/battleship/db/sqlc"
	mc "github.com/coltonsurfer/battleship/models/connection"
	"github.com/coltonsurfer/battleship/models/match"
)

const (
	URLQuerySessionIDKeyword string = "sessionID"
)

var (
	upgrader = websocket.Upgrader{

		// good average time since this is not a high-latency operation such as video streaming
		HandshakeTimeout: time.Second * 5,

		// probably more that enough but this is a good average size
		ReadBufferSize:  2048,
		WriteBufferSize: 2048,
		CheckOrigin:     func(r *http.Request) bool { return true },
	}
)

// RequestProcessor bridges one websocket session to one solo match.
type RequestProcessor struct {
	sessionManager mc.SessionManager
	matchManager   match.MatchManager
	dbManager      *sqlc.DbManager
	ipnet          net.IPNet
}

// NewRequestProcessor accepts a nil dbManager; analytics are then skipped.
func NewRequestProcessor(
	sessionManager mc.SessionManager,
	matchManager match.MatchManager,
	dbManager *sqlc.DbManager,
) RequestProcessor {
	return RequestProcessor{
		sessionManager: sessionManager,
		matchManager:   matchManager,
		dbManager:      dbManager,
		ipnet:          serverIpNet(),
	}
}

// serverIpNet picks the first non-loopback IPv4 address of the host. It falls
// back to loopback on hosts without one.
func serverIpNet() net.IPNet {
	loopback := net.IPNet{IP: net.IPv4(127, 0, 0, 1), Mask: net.CIDRMask(32, 32)}

	ifaces, err := net.Interfaces()
	if err != nil {
		log.Warn("could not list interfaces", "err", err)
		return loopback
	}

	for _, iface := range ifaces {
		// If the flag is down
		if iface.Flags&net.FlagUp == 0 {
			continue
		}

		if iface.Flags&net.FlagLoopback != 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}

		for _, addr := range addrs {
			ipnet, ok := addr.(*net.IPNet)
			if !ok {
				continue
			}
			if ipnet.IP.To4() != nil && !ipnet.IP.IsLoopback() {
				return *ipnet
			}
		}
	}

	return loopback
}

func (rp RequestProcessor) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// use Upgrade method to make a websocket connection
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("upgrade failed", "err", err)
		return
	}

	sessionIdQuery := r.URL.Query().Get(URLQuerySessionIDKeyword)
	switch sessionIdQuery {
	case "":
		log.Info("a new connection established", "remote", conn.RemoteAddr().String())
		rp.processSessionRequests(rp.sessionManager.GenerateNewSession(conn))

	default:
		if err := rp.sessionManager.ReconnectSession(sessionIdQuery, conn); err != nil {
			// This either means an expired session or invalid session ID
			_ = conn.WriteJSON(mc.NewMessage[mc.NoPayload](mc.CodeReceivedInvalidSessionID))
			conn.Close()
			return
		}
		rp.pushCurrentState(sessionIdQuery)
	}
}

// pushCurrentState brings a reconnected client up to date. The session loop
// keeps running on its original goroutine.
func (rp RequestProcessor) pushCurrentState(sessionId string) {
	session, err := rp.sessionManager.FindSession(sessionId)
	if err != nil {
		return
	}
	controller, err := rp.matchManager.GetMatch(session.MatchId())
	if err != nil {
		return
	}

	msg := mc.NewMessage[mc.RespState](mc.CodeState)
	msg.AddPayload(mc.NewRespState(controller.Id(), controller.State()))
	_ = rp.sessionManager.WriteToSessionConn(session, msg, mc.MessageTypeJSON)
}

// stateListener pushes every state to the session and records analytics on
// the start and end of each match.
func (rp RequestProcessor) stateListener(session *mc.Session) match.Listener {
	serverPqtypeInet := pqtype.Inet{IPNet: rp.ipnet, Valid: true}
	lastPhase := match.PhaseSetup

	return func(matchId string, s match.State) {
		switch {
		case lastPhase == match.PhaseSetup && s.Phase() == match.PhasePlayerTurn:
			go rp.dbManager.RecordMatchStarted(serverPqtypeInet)
		case lastPhase != match.PhaseFinished && s.Phase() == match.PhaseFinished:
			go rp.dbManager.RecordMatchFinished(serverPqtypeInet, s.Winner() == match.ShooterPlayer)
		}
		lastPhase = s.Phase()

		msg := mc.NewMessage[mc.RespState](mc.CodeState)
		msg.AddPayload(mc.NewRespState(matchId, s))
		if err := rp.sessionManager.WriteToSessionConn(session, msg, mc.MessageTypeJSON); err != nil {
			log.Warn("failed to push state", "session", session.Id(), "match", matchId, "err", err)
		}
	}
}

func (rp RequestProcessor) processSessionRequests(session *mc.Session) {
	sessionId := session.Id()
	controller := rp.matchManager.CreateMatch(match.WithListener(rp.stateListener(session)))
	session.SetMatchId(controller.Id())

	defer func() {
		rp.matchManager.TerminateMatch(controller.Id())
		if conn := session.Conn(); conn != nil {
			conn.Close()
		}
		rp.sessionManager.TerminateSession(sessionId)
		log.Info("session closed", "session", sessionId, "match", controller.Id())
	}()

	resp := mc.NewMessage[mc.RespSessionId](mc.CodeSessionID)
	resp.AddPayload(mc.RespSessionId{SessionID: sessionId, MatchId: controller.Id()})
	if err := rp.sessionManager.WriteToSessionConn(session, resp, mc.MessageTypeJSON); err != nil {
		return
	}

	initial := mc.NewMessage[mc.RespState](mc.CodeState)
	initial.AddPayload(mc.NewRespState(controller.Id(), controller.State()))
	if err := rp.sessionManager.WriteToSessionConn(session, initial, mc.MessageTypeJSON); err != nil {
		return
	}

sessionLoop:
	for {
		// A WebSocket frame can be one of 6 types: text=1, binary=2, ping=9, pong=10, close=8 and continuation=0
		// https://www.rfc-editor.org/rfc/rfc6455.html#section-11.8
		_, payload, err := rp.sessionManager.ReadFromSessionConn(session)
		if err != nil {
			// This error happens after retries. If it's not nil,
			// then something was wrong with the session connection
			// and couldn't be resolved
			break sessionLoop
		}

		code, err := rp.sessionManager.FetchCodeFromMsg(payload)
		if err != nil {
			msg := mc.NewMessage[mc.NoPayload](mc.CodeSignalAbsent)
			msg.AddError(err.Error(), "incoming req payload must contain 'code' field")
			if err = rp.sessionManager.WriteToSessionConn(session, msg, mc.MessageTypeJSON); err != nil {
				break sessionLoop
			}
			continue sessionLoop
		}

		cmd, known, err := NewRequest(payload).Command(code)
		if !known {
			respInvalidSignal := mc.NewMessage[mc.NoPayload](mc.CodeInvalidSignal)
			respInvalidSignal.AddError("", "invalid code in the incoming payload")
			if err := rp.sessionManager.WriteToSessionConn(session, respInvalidSignal, mc.MessageTypeJSON); err != nil {
				break sessionLoop
			}
			continue sessionLoop
		}
		if err != nil {
			if !rp.writeRejected(session, controller, err, "invalid payload") {
				break sessionLoop
			}
			continue sessionLoop
		}

		// Accepted and ignored commands reach the client through the listener
		if _, err := controller.Dispatch(cmd); err != nil {
			if !rp.writeRejected(session, controller, err, "command rejected") {
				break sessionLoop
			}
		}
	}
}

// writeRejected answers with the unchanged state and the reason. It reports
// whether the session is still writable.
func (rp RequestProcessor) writeRejected(session *mc.Session, controller *match.Controller, err error, message string) bool {
	msg := mc.NewMessage[mc.RespState](mc.CodeState)
	msg.AddPayload(mc.NewRespState(controller.Id(), controller.State()))
	msg.AddError(err.Error(), message)
	return rp.sessionManager.WriteToSessionConn(session, msg, mc.MessageTypeJSON) == nil
}
