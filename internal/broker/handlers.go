package broker

import (
	"errors"

	cerrors "chatd/internal/errors"
	"chatd/internal/moderation"
	"chatd/internal/protocol"
	"chatd/internal/session"
)

// dispatch runs one request line for s.  It returns false when the
// session asked to disconnect.  Command failures are reported to s
// only.
func (b *Broker) dispatch(s *session.Session, line []byte) bool {
	req, err := protocol.Decode(line)
	if err != nil {
		b.fail(s, "", err)
		return true
	}
	b.metrics.CommandHandled()
	s.Logger.Debug("command %s", req.Command)

	switch req.Command {
	case protocol.CmdRegister:
		err = b.handleRegister(s, req)
	case protocol.CmdConnect:
		err = b.handleConnect(s, req)
	case protocol.CmdMessage:
		err = b.handleMessage(s, req)
	case protocol.CmdStrike:
		err = b.handleStrike(s, req)
	case protocol.CmdStatus:
		err = b.handleStatus(s)
	case protocol.CmdDisconnect:
		b.deliver(s, protocol.Goodbye)
		return false
	default:
		err = cerrors.Newf(cerrors.UnknownCommand, "unknown command %q", req.Command)
	}

	if err != nil {
		b.fail(s, req.Command, err)
	}
	return true
}

func (b *Broker) fail(s *session.Session, command string, err error) {
	line := protocol.ErrorLine(err)
	b.metrics.CommandFailed(line)
	if cerrors.KindOf(err) == cerrors.KindUnknown {
		s.Logger.Error("%s: %v", command, err)
	} else {
		s.Logger.Verbose("%s rejected: %s", command, line)
	}
	b.deliver(s, line)
}

func (b *Broker) handleRegister(s *session.Session, req protocol.Request) error {
	if s.State() != session.Unauthenticated {
		return cerrors.ErrAlreadyAuthenticated
	}
	creds, err := req.Credentials()
	if err != nil {
		return err
	}
	p, err := b.dir.Register(creds.Nickname, creds.Password)
	if err != nil {
		return err
	}
	return b.login(s, p.Nickname, protocol.Registered(p.Nickname))
}

func (b *Broker) handleConnect(s *session.Session, req protocol.Request) error {
	if s.State() != session.Unauthenticated {
		return cerrors.ErrAlreadyAuthenticated
	}
	creds, err := req.Credentials()
	if err != nil {
		return err
	}
	p, err := b.dir.Authenticate(creds.Nickname, creds.Password)
	if err != nil {
		return err
	}
	return b.login(s, p.Nickname, protocol.LoggedIn(p.Nickname))
}

// speaker returns the principal behind s if it may message or strike.
func (b *Broker) speaker(s *session.Session) (string, error) {
	nick, ok := s.Nickname()
	if !ok {
		return "", cerrors.ErrNotAuthenticated
	}
	if b.dir.IsBanned(nick) {
		return "", cerrors.ErrBanned
	}
	return nick, nil
}

func (b *Broker) handleMessage(s *session.Session, req protocol.Request) error {
	nick, err := b.speaker(s)
	if err != nil {
		return err
	}
	text, err := req.Text()
	if err != nil {
		return err
	}
	msg := b.broadcast(nick, text)
	s.Logger.Debug("message #%d broadcast", msg.Seq)
	return nil
}

func (b *Broker) handleStrike(s *session.Session, req protocol.Request) error {
	nick, err := b.speaker(s)
	if err != nil {
		return err
	}
	target, err := req.Target()
	if err != nil {
		return err
	}

	res, err := b.bans.Strike(nick, target)
	if errors.Is(err, moderation.ErrClosed) {
		return cerrors.Newf(cerrors.KindUnknown, "server is shutting down")
	}
	if err != nil {
		return err
	}
	b.metrics.Strike()
	s.Logger.Info("%s struck %s (%d/%d)", nick, target, res.Principal.Strikes, res.Threshold)

	if res.Banned {
		b.deliver(s, protocol.BanIssued(target, b.opts.BanDuration))
	} else {
		b.deliver(s, protocol.StrikeRecorded(target, res.Principal.Strikes, res.Threshold))
	}
	return nil
}

func (b *Broker) handleStatus(s *session.Session) error {
	nick, ok := s.Nickname()
	if !ok {
		return cerrors.ErrNotAuthenticated
	}
	p, ok := b.dir.Lookup(nick)
	if !ok {
		return cerrors.Newf(cerrors.UnknownUser, "there is no user %q", nick)
	}
	threshold := b.opts.StrikeThreshold
	if threshold < 1 {
		threshold = 1
	}
	b.deliver(s, protocol.Status(nick, p.Strikes, threshold, p.BannedUntil, len(b.dir.Online())))
	return nil
}
