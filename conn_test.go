package pgpipe_test

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"net"
	"testing"
	"time"

	"github.com/jackc/pgpipe"
	"github.com/jackc/pgpipe/internal/pgmock"
	"github.com/jackc/pgpipe/pgtype"
	"github.com/jackc/pgpipe/pgwire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func md5Hex(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

// startServer connects a Conn to a scripted backend over an in-memory pipe.
// The script runs in a goroutine; the returned function joins it.
func startServer(t *testing.T, script func(*pgmock.Server)) (*pgpipe.Conn, func()) {
	t.Helper()

	clientConn, serverConn := net.Pipe()

	scriptDone := make(chan struct{})
	server := pgmock.NewServer(serverConn)
	go func() {
		defer close(scriptDone)
		defer server.Close()
		if err := server.AcceptStartup(map[string]string{"server_version": "14.5 (Debian 14.5-1)"}); err != nil {
			t.Errorf("startup script: %v", err)
			return
		}
		if script != nil {
			script(server)
		}
	}()

	cfg, err := pgpipe.ParseConfig("host=localhost user=jack")
	require.NoError(t, err)
	cfg.DialFunc = func(ctx context.Context, network, addr string) (net.Conn, error) {
		return clientConn, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, err := pgpipe.ConnectConfig(ctx, cfg)
	require.NoError(t, err)

	return conn, func() { <-scriptDone }
}

func TestConnectTrust(t *testing.T) {
	conn, join := startServer(t, nil)
	join()

	assert.Equal(t, "14.5 (Debian 14.5-1)", conn.ParameterStatus("server_version"))
	assert.EqualValues(t, 42, conn.PID())
	assert.EqualValues(t, 4242, conn.SecretKey())

	version, err := conn.ServerVersion()
	require.NoError(t, err)
	assert.EqualValues(t, 14, version.Major())
	assert.EqualValues(t, 5, version.Minor())
}

func TestConnectCleartextPassword(t *testing.T) {
	clientConn, serverConn := net.Pipe()

	scriptDone := make(chan struct{})
	go func() {
		defer close(scriptDone)
		server := pgmock.NewServer(serverConn)
		defer server.Close()

		_, err := server.ReceiveStartup()
		if err != nil {
			t.Errorf("ReceiveStartup: %v", err)
			return
		}
		if err := server.Send(&pgwire.AuthenticationCleartextPassword{}); err != nil {
			t.Errorf("Send: %v", err)
			return
		}

		msg, err := server.Receive()
		if err != nil {
			t.Errorf("Receive: %v", err)
			return
		}
		pw, ok := msg.(*pgwire.PasswordMessage)
		if !ok || pw.Password != "secret" {
			t.Errorf("expected cleartext password, got %#v", msg)
			return
		}

		server.Send(
			&pgwire.AuthenticationOk{},
			&pgwire.ReadyForQuery{TxStatus: pgwire.TxStatusIdle},
		)
	}()

	cfg, err := pgpipe.ParseConfig("host=localhost user=jack password=secret")
	require.NoError(t, err)
	cfg.DialFunc = func(ctx context.Context, network, addr string) (net.Conn, error) {
		return clientConn, nil
	}

	_, err = pgpipe.ConnectConfig(context.Background(), cfg)
	require.NoError(t, err)
	<-scriptDone
}

func TestConnectMD5Password(t *testing.T) {
	clientConn, serverConn := net.Pipe()

	scriptDone := make(chan struct{})
	go func() {
		defer close(scriptDone)
		server := pgmock.NewServer(serverConn)
		defer server.Close()

		if _, err := server.ReceiveStartup(); err != nil {
			t.Errorf("ReceiveStartup: %v", err)
			return
		}
		if err := server.Send(&pgwire.AuthenticationMD5Password{Salt: [4]byte{'s', 'a', 'l', 't'}}); err != nil {
			t.Errorf("Send: %v", err)
			return
		}

		msg, err := server.Receive()
		if err != nil {
			t.Errorf("Receive: %v", err)
			return
		}
		pw, ok := msg.(*pgwire.PasswordMessage)
		// md5(md5("secretjack") + "salt"), computed with md5Hex
		if !ok || pw.Password != "md5"+md5Hex(md5Hex("secretjack")+"salt") {
			t.Errorf("unexpected password message %#v", msg)
			return
		}

		server.Send(
			&pgwire.AuthenticationOk{},
			&pgwire.ReadyForQuery{TxStatus: pgwire.TxStatusIdle},
		)
	}()

	cfg, err := pgpipe.ParseConfig("host=localhost user=jack password=secret")
	require.NoError(t, err)
	cfg.DialFunc = func(ctx context.Context, network, addr string) (net.Conn, error) {
		return clientConn, nil
	}

	_, err = pgpipe.ConnectConfig(context.Background(), cfg)
	require.NoError(t, err)
	<-scriptDone
}

func TestConnectRefusesSASL(t *testing.T) {
	clientConn, serverConn := net.Pipe()

	go func() {
		server := pgmock.NewServer(serverConn)
		defer server.Close()

		if _, err := server.ReceiveStartup(); err != nil {
			return
		}
		server.Send(&pgwire.AuthenticationSASL{AuthMechanisms: []string{"SCRAM-SHA-256"}})
	}()

	cfg, err := pgpipe.ParseConfig("host=localhost user=jack password=secret")
	require.NoError(t, err)
	cfg.DialFunc = func(ctx context.Context, network, addr string) (net.Conn, error) {
		return clientConn, nil
	}

	_, err = pgpipe.ConnectConfig(context.Background(), cfg)
	assert.ErrorIs(t, err, pgpipe.ErrUnsupportedAuthMethod)
}

func TestConnectServerStartupError(t *testing.T) {
	clientConn, serverConn := net.Pipe()

	go func() {
		server := pgmock.NewServer(serverConn)
		defer server.Close()

		if _, err := server.ReceiveStartup(); err != nil {
			return
		}
		server.Send(&pgwire.ErrorResponse{Severity: "FATAL", Code: "28000", Message: "role does not exist"})
	}()

	cfg, err := pgpipe.ParseConfig("host=localhost user=nosuchuser")
	require.NoError(t, err)
	cfg.DialFunc = func(ctx context.Context, network, addr string) (net.Conn, error) {
		return clientConn, nil
	}

	_, err = pgpipe.ConnectConfig(context.Background(), cfg)
	require.ErrorIs(t, err, pgpipe.ErrServerStartupError)

	var pgErr *pgpipe.Error
	require.ErrorAs(t, err, &pgErr)
	require.NotNil(t, pgErr.Diag)
	assert.Equal(t, "28000", pgErr.Diag.Code)
}

func commandsComplete(tags ...string) []pgwire.BackendMessage {
	var msgs []pgwire.BackendMessage
	for _, tag := range tags {
		msgs = append(msgs,
			&pgwire.CommandComplete{CommandTag: []byte(tag)},
			&pgwire.ReadyForQuery{TxStatus: pgwire.TxStatusIdle},
		)
	}
	return msgs
}

func TestExecCreateInsertSelectDeleteDrop(t *testing.T) {
	type countRow struct {
		Amount int64
	}

	conn, join := startServer(t, func(server *pgmock.Server) {
		// Five simple queries arrive in one payload.
		if _, err := server.ReceiveN(5); err != nil {
			t.Errorf("ReceiveN: %v", err)
			return
		}

		var msgs []pgwire.BackendMessage
		msgs = append(msgs, commandsComplete("CREATE TABLE", "INSERT 0 15")...)
		msgs = append(msgs,
			&pgwire.RowDescription{Fields: []pgwire.FieldDescription{
				{Name: "amount", DataTypeOID: pgtype.Int8OID, Format: pgwire.TextFormat},
			}},
			&pgwire.DataRow{Columns: [][]byte{[]byte("15")}},
			&pgwire.CommandComplete{CommandTag: []byte("SELECT 1")},
			&pgwire.ReadyForQuery{TxStatus: pgwire.TxStatusIdle},
		)
		msgs = append(msgs, commandsComplete("DELETE 15", "DROP TABLE")...)
		server.Send(msgs...)
	})
	defer join()

	req := pgpipe.NewRequest().
		AddSimpleQuery("create table cisdd (id bigserial primary key, name text not null, postal_code integer)").
		AddSimpleQuery("insert into cisdd (name, postal_code) select 'Ernie', g from generate_series(1, 15) g").
		AddSimpleQuery("select count(*) as amount from cisdd").
		AddSimpleQuery("delete from cisdd").
		AddSimpleQuery("drop table cisdd")

	var rows []countRow
	resp := pgpipe.NewResponse(
		pgpipe.IgnoreResults(),
		pgpipe.IgnoreResults(),
		pgpipe.Into(&rows),
		pgpipe.IgnoreResults(),
		pgpipe.IgnoreResults(),
	)

	require.NoError(t, conn.Exec(context.Background(), req, resp))
	require.Len(t, rows, 1)
	assert.EqualValues(t, 15, rows[0].Amount)
}

func TestExecBinaryDateRoundTrip(t *testing.T) {
	type dateRow struct {
		D pgtype.Date `db:"date"`
	}

	conn, join := startServer(t, func(server *pgmock.Server) {
		// Parse + Sync, then Bind + Describe + Execute + Sync.
		msgs, err := server.ReceiveN(6)
		if err != nil {
			t.Errorf("ReceiveN: %v", err)
			return
		}

		bind, ok := msgs[2].(*pgwire.Bind)
		if !ok || string(bind.Parameters[0]) != "1977-06-21" {
			t.Errorf("unexpected bind %#v", msgs[2])
			return
		}

		server.Send(
			&pgwire.ParseComplete{},
			&pgwire.ReadyForQuery{TxStatus: pgwire.TxStatusIdle},
			&pgwire.BindComplete{},
			&pgwire.RowDescription{Fields: []pgwire.FieldDescription{
				{Name: "date", DataTypeOID: pgtype.DateOID, Format: pgwire.BinaryFormat},
			}},
			&pgwire.DataRow{Columns: [][]byte{{0xFF, 0xFF, 0xDF, 0xDB}}},
			&pgwire.CommandComplete{CommandTag: []byte("SELECT 1")},
			&pgwire.ReadyForQuery{TxStatus: pgwire.TxStatusIdle},
		)
	})
	defer join()

	req := pgpipe.NewRequest().
		AddPrepare("SELECT $1::text::date AS date", "stmt").
		AddExecute("stmt", []pgpipe.Param{pgpipe.StringParam("1977-06-21")}, &pgpipe.QueryOptions{
			ResultFormat: pgwire.BinaryFormat,
		})

	var rows []dateRow
	resp := pgpipe.NewResponse(pgpipe.IgnoreResults(), pgpipe.Into(&rows))

	require.NoError(t, conn.Exec(context.Background(), req, resp))
	require.Len(t, rows, 1)
	assert.Equal(t, time.Date(1977, 6, 21, 0, 0, 0, 0, time.UTC), rows[0].D.Time)
}

func TestExecServerErrorMidPipeline(t *testing.T) {
	conn, join := startServer(t, func(server *pgmock.Server) {
		// 3 steps x 4 messages + final Sync.
		if _, err := server.ReceiveN(13); err != nil {
			t.Errorf("ReceiveN: %v", err)
			return
		}

		server.Send(
			&pgwire.ParseComplete{},
			&pgwire.BindComplete{},
			&pgwire.RowDescription{Fields: []pgwire.FieldDescription{
				{Name: "n", DataTypeOID: pgtype.Int4OID, Format: pgwire.TextFormat},
			}},
			&pgwire.DataRow{Columns: [][]byte{[]byte("1")}},
			&pgwire.CommandComplete{CommandTag: []byte("SELECT 1")},
			&pgwire.ParseComplete{},
			&pgwire.BindComplete{},
			&pgwire.RowDescription{Fields: []pgwire.FieldDescription{
				{Name: "n", DataTypeOID: pgtype.Int4OID, Format: pgwire.TextFormat},
			}},
			&pgwire.ErrorResponse{Severity: "ERROR", Code: "23505", Message: "duplicate key value"},
			&pgwire.ReadyForQuery{TxStatus: pgwire.TxStatusIdle},
		)

		// The connection stays usable: serve the follow-up query.
		if _, err := server.Receive(); err != nil {
			t.Errorf("Receive: %v", err)
			return
		}
		server.Send(
			&pgwire.RowDescription{Fields: []pgwire.FieldDescription{
				{Name: "n", DataTypeOID: pgtype.Int4OID, Format: pgwire.TextFormat},
			}},
			&pgwire.DataRow{Columns: [][]byte{[]byte("1")}},
			&pgwire.CommandComplete{CommandTag: []byte("SELECT 1")},
			&pgwire.ReadyForQuery{TxStatus: pgwire.TxStatusIdle},
		)
	})
	defer join()

	type row struct {
		N int32
	}

	req := pgpipe.NewRequest()
	req.SetAutosync(false)
	req.AddQuery("select 1 as n", nil, nil).
		AddQuery("insert into t values (1) returning 1 as n", nil, nil).
		AddQuery("select 3 as n", nil, nil).
		AddSync()

	var r1, r2, r3 []row
	h1, h2, h3 := pgpipe.Into(&r1), pgpipe.Into(&r2), pgpipe.Into(&r3)
	resp := pgpipe.NewResponse(h1, h2, h3)

	err := conn.Exec(context.Background(), req, resp)
	require.Error(t, err)

	// The aggregate error is the first failing handler's.
	assert.ErrorIs(t, err, pgpipe.ErrExecServerError)
	var pgErr *pgpipe.Error
	require.ErrorAs(t, err, &pgErr)
	require.NotNil(t, pgErr.Diag)
	assert.Equal(t, "23505", pgErr.Diag.Code)

	// First handler is OK, second carries the server error, third was
	// skipped.
	assert.Nil(t, h1.Result())
	require.NotNil(t, h2.Result())
	assert.Equal(t, pgpipe.ErrExecServerError, h2.Result().Code)
	require.NotNil(t, h3.Result())
	assert.Equal(t, pgpipe.ErrStepSkipped, h3.Result().Code)
	require.Len(t, r1, 1)
	assert.Empty(t, r2)
	assert.Empty(t, r3)

	// A subsequent query on the same connection succeeds.
	var again []row
	req2 := pgpipe.NewRequest().AddSimpleQuery("select 1 as n")
	require.NoError(t, conn.Exec(context.Background(), req2, pgpipe.NewResponse(pgpipe.Into(&again))))
	require.Len(t, again, 1)
}

func TestExecNilResponseIgnoresResults(t *testing.T) {
	conn, join := startServer(t, func(server *pgmock.Server) {
		if _, err := server.Receive(); err != nil {
			return
		}
		server.Send(
			&pgwire.CommandComplete{CommandTag: []byte("CREATE TABLE")},
			&pgwire.ReadyForQuery{TxStatus: pgwire.TxStatusIdle},
		)
	})
	defer join()

	req := pgpipe.NewRequest().AddSimpleQuery("create table t (n int)")
	require.NoError(t, conn.Exec(context.Background(), req, nil))
}

func TestExecHandlerChainMustCoverRequest(t *testing.T) {
	conn, join := startServer(t, nil)
	defer join()

	req := pgpipe.NewRequest().AddSimpleQuery("select 1").AddSimpleQuery("select 2")
	resp := pgpipe.NewResponse(pgpipe.IgnoreResults()) // covers only the first query

	err := conn.Exec(context.Background(), req, resp)
	assert.ErrorIs(t, err, pgpipe.ErrIncompatibleResponseType)

	// Nothing was written: the connection is still usable and the exec is
	// safe to retry.
	assert.False(t, conn.IsClosed())
	assert.True(t, pgpipe.SafeToRetry(err))
}

func TestExecCancellationMarksConnectionFailed(t *testing.T) {
	released := make(chan struct{})
	conn, join := startServer(t, func(server *pgmock.Server) {
		server.Receive()
		// Never answer; wait until the client gave up.
		<-released
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	req := pgpipe.NewRequest().AddSimpleQuery("select pg_sleep(60)")
	err := conn.Exec(ctx, req, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)

	// The request reached the wire before the cancellation.
	assert.False(t, pgpipe.SafeToRetry(err))

	// Protocol sync is lost: the connection is unusable until reconnect.
	err = conn.Exec(context.Background(), pgpipe.NewRequest().AddSimpleQuery("select 1"), nil)
	assert.ErrorIs(t, err, pgpipe.ErrConnectionUnusable)

	close(released)
	join()
}

func TestExecDeadlineTimeout(t *testing.T) {
	released := make(chan struct{})
	conn, join := startServer(t, func(server *pgmock.Server) {
		server.Receive()
		// Never answer; wait until the client gave up.
		<-released
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	req := pgpipe.NewRequest().AddSimpleQuery("select pg_sleep(60)")
	err := conn.Exec(ctx, req, nil)
	require.Error(t, err)
	assert.True(t, pgpipe.Timeout(err))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, pgpipe.SafeToRetry(err))

	close(released)
	join()
}

func TestExecOnClosedConnection(t *testing.T) {
	conn, join := startServer(t, nil)
	join()

	require.NoError(t, conn.Close(context.Background()))
	err := conn.Exec(context.Background(), pgpipe.NewRequest().AddSimpleQuery("select 1"), nil)
	assert.ErrorIs(t, err, pgpipe.ErrConnectionUnusable)
}
