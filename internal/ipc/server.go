package ipc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"sync"

	"log/slog"

	"podforge/internal/api"
	"podforge/internal/daemon"
	"podforge/internal/episodes"
	"podforge/internal/logging"
	"podforge/internal/version"
)

// Server exposes daemon control via JSON-RPC over a Unix domain socket.
type Server struct {
	path      string
	daemon    *daemon.Daemon
	logger    *slog.Logger
	listener  net.Listener
	rpcServer *rpc.Server

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer configures the IPC server at the given socket path.
func NewServer(ctx context.Context, path string, d *daemon.Daemon, logger *slog.Logger) (*Server, error) {
	if d == nil {
		return nil, errors.New("ipc server requires daemon")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on socket: %w", err)
	}

	rpcServer := rpc.NewServer()
	srv := &service{daemon: d, logger: logger, ctx: ctx}
	if err := rpcServer.RegisterName("Podforge", srv); err != nil {
		listener.Close()
		return nil, fmt.Errorf("register rpc service: %w", err)
	}

	serverCtx, cancel := context.WithCancel(ctx)
	return &Server{
		path:      path,
		daemon:    d,
		logger:    logger,
		listener:  listener,
		rpcServer: rpcServer,
		ctx:       serverCtx,
		cancel:    cancel,
	}, nil
}

// Serve starts accepting RPC connections until the context is canceled.
func (s *Server) Serve() {
	s.logger.Debug("IPC server listening", logging.String("socket", s.path))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				select {
				case <-s.ctx.Done():
					return
				default:
				}
				s.logger.Warn("accept failed",
					logging.Error(err),
					logging.String(logging.FieldEventType, "ipc_accept_failed"),
					logging.String("impact", "IPC clients may fail to connect"),
					logging.String(logging.FieldErrorHint, "Check socket permissions and restart the daemon if needed"))
				continue
			}
			s.wg.Add(1)
			go func(c net.Conn) {
				defer s.wg.Done()
				s.rpcServer.ServeCodec(jsonrpc.NewServerCodec(c))
			}(conn)
		}
	}()
}

// Close stops the server and removes the socket file.
func (s *Server) Close() {
	s.cancel()
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.wg.Wait()
	if err := os.RemoveAll(s.path); err != nil {
		s.logger.Warn("failed to remove socket",
			logging.String("socket", s.path),
			logging.Error(err),
			logging.String(logging.FieldEventType, "ipc_socket_cleanup_failed"),
			logging.String("impact", "stale IPC socket may confuse CLI clients"),
			logging.String(logging.FieldErrorHint, "Remove the socket file manually if clients cannot connect"))
	}
}

type service struct {
	daemon *daemon.Daemon
	logger *slog.Logger
	ctx    context.Context
}

func (s *service) log() *slog.Logger {
	if s.logger == nil {
		return logging.NewNop()
	}
	return s.logger.With(logging.String("component", "ipc"))
}

func convertEpisode(ep *api.Episode) *Episode {
	if ep == nil {
		return nil
	}
	out := Episode(*ep)
	return &out
}

func (s *service) Ping(_ PingRequest, resp *PingResponse) error {
	resp.PID = os.Getpid()
	resp.Version = version.Version
	return nil
}

func (s *service) Status(_ StatusRequest, resp *StatusResponse) error {
	status := s.daemon.Status(s.ctx)
	resp.Running = status.Running
	resp.PID = status.PID
	resp.Version = status.Version
	resp.DatabasePath = status.DatabasePath
	resp.LockPath = status.LockFilePath
	resp.EpisodeStats = api.MergeEpisodeStats(status.Workflow.EpisodeStats)
	resp.TaskStats = api.MergeTaskStats(status.Workflow.TaskStats)
	resp.LastError = status.Workflow.LastError
	if status.Workflow.LastEpisode != nil {
		ep := api.FromEpisode(status.Workflow.LastEpisode)
		resp.LastEpisode = convertEpisode(&ep)
	}
	if len(status.Workflow.Jobs) > 0 {
		resp.Jobs = make([]ScheduleEntry, 0, len(status.Workflow.Jobs))
		for _, job := range status.Workflow.Jobs {
			resp.Jobs = append(resp.Jobs, api.FromJobStatus(job))
		}
	}
	resp.Dependencies = api.FromDependencyStatuses(status.Dependencies)
	return nil
}

func (s *service) Generate(req GenerateRequest, resp *GenerateResponse) error {
	s.log().Debug("generation requested", logging.Int("topic_count", len(req.Topics)))
	episode, err := s.daemon.Generate(s.ctx, req.Topics, req.Style)
	if err != nil {
		return err
	}
	resp.Episode = api.FromEpisode(episode)
	s.log().Info("generation accepted",
		logging.String(logging.FieldEventType, "generate_requested"),
		logging.Int64(logging.FieldEpisodeID, episode.ID))
	return nil
}

func (s *service) EpisodeList(req EpisodeListRequest, resp *EpisodeListResponse) error {
	statuses := make([]episodes.Status, 0, len(req.Statuses))
	for _, status := range req.Statuses {
		parsed, ok := episodes.ParseStatus(status)
		if !ok {
			continue
		}
		statuses = append(statuses, parsed)
	}
	var (
		eps []*episodes.Episode
		err error
	)
	if len(statuses) == 0 {
		eps, err = s.daemon.RecentEpisodes(s.ctx, req.Limit)
	} else {
		eps, err = s.daemon.ListEpisodes(s.ctx, statuses)
		if err == nil && req.Limit > 0 && len(eps) > req.Limit {
			eps = eps[:req.Limit]
		}
	}
	if err != nil {
		return err
	}
	resp.Episodes = api.FromEpisodes(eps)
	return nil
}

func (s *service) EpisodeDescribe(req EpisodeDescribeRequest, resp *EpisodeDescribeResponse) error {
	if req.ID <= 0 {
		return fmt.Errorf("invalid episode id %d", req.ID)
	}
	episode, err := s.daemon.DescribeEpisode(s.ctx, req.ID)
	if err != nil {
		return err
	}
	if episode == nil {
		return fmt.Errorf("episode %d not found", req.ID)
	}
	resp.Episode = api.FromEpisode(episode)
	return nil
}

func (s *service) EpisodeRemove(req EpisodeRemoveRequest, resp *EpisodeRemoveResponse) error {
	if req.ID <= 0 {
		return fmt.Errorf("invalid episode id %d", req.ID)
	}
	s.log().Debug("episode removal requested", logging.Int64(logging.FieldEpisodeID, req.ID))
	removed, err := s.daemon.RemoveEpisode(s.ctx, req.ID)
	if err != nil {
		return err
	}
	resp.Removed = removed
	if removed {
		s.log().Info("episode removed",
			logging.String(logging.FieldEventType, "episode_remove"),
			logging.Int64(logging.FieldEpisodeID, req.ID))
	}
	return nil
}

func (s *service) EpisodeClearFailed(_ EpisodeClearFailedRequest, resp *EpisodeClearFailedResponse) error {
	s.log().Debug("failed episode cleanup requested")
	removed, err := s.daemon.ClearFailedEpisodes(s.ctx)
	if err != nil {
		return err
	}
	resp.Removed = removed
	s.log().Info("failed episodes cleared",
		logging.String(logging.FieldEventType, "episode_clear_failed"),
		logging.Int64("removed_count", removed))
	return nil
}

func (s *service) TaskList(req TaskListRequest, resp *TaskListResponse) error {
	records := s.daemon.TaskRecords(req.Limit)
	resp.Tasks = make([]ScheduleEntry, 0, len(records))
	for _, record := range records {
		resp.Tasks = append(resp.Tasks, api.FromTask(record))
	}
	return nil
}

func (s *service) ScheduleList(_ ScheduleListRequest, resp *ScheduleListResponse) error {
	jobs := s.daemon.ScheduleSnapshot()
	resp.Jobs = make([]JobEntry, 0, len(jobs))
	for _, job := range jobs {
		entry := JobEntry{
			ID:        job.ID,
			Name:      job.Name,
			Trigger:   job.Trigger,
			InFlight:  job.InFlight,
			LastRun:   api.TimePlaceholder,
			NextRun:   api.TimePlaceholder,
			Runs:      job.Runs,
			Dropped:   job.Dropped,
			Coalesced: job.Coalesced,
		}
		if formatted := api.FormatTime(job.LastRun); formatted != "" {
			entry.LastRun = formatted
		}
		if formatted := api.FormatTime(job.NextRun); formatted != "" {
			entry.NextRun = formatted
		}
		resp.Jobs = append(resp.Jobs, entry)
	}
	return nil
}

func (s *service) TestNotification(_ TestNotificationRequest, resp *TestNotificationResponse) error {
	sent, message, err := s.daemon.TestNotification(s.ctx)
	resp.Sent = sent
	resp.Message = message
	return err
}
