package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	client_agent "github.com/humanbelnik/kinoswap/matchroom/internal/client/agent"
	client_api "github.com/humanbelnik/kinoswap/matchroom/internal/client/api"
	client_conn "github.com/humanbelnik/kinoswap/matchroom/internal/client/conn"
	"github.com/humanbelnik/kinoswap/matchroom/internal/protocol"
)

// Stand-in for the card swipe animation a graphical client would play.
const animation = 300 * time.Millisecond

type TUI struct {
	api   *client_api.Client
	input chan string

	ticket  client_api.Ticket
	agent   *client_agent.Agent
	conn    *client_conn.Conn
	matched chan int64
	expired chan struct{}
}

func NewTUI(baseURL, token string) *TUI {
	t := &TUI{
		api:   client_api.New(baseURL, token),
		input: make(chan string),
	}

	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			t.input <- strings.TrimSpace(scanner.Text())
		}
		close(t.input)
	}()
	return t
}

func (t *TUI) ask(prompt string) (string, bool) {
	fmt.Print(prompt)
	line, ok := <-t.input
	return line, ok
}

func (t *TUI) CreateRoom(ctx context.Context) error {
	ticket, err := t.api.CreateRoom(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Комната создана! Код: %s, PIN: %s\n", ticket.Code, ticket.Pin)
	fmt.Println("Передайте код и PIN второму участнику")
	return t.play(ctx, ticket)
}

func (t *TUI) JoinRoom(ctx context.Context) error {
	code, ok := t.ask("Введите код комнаты: ")
	if !ok {
		return errors.New("ошибка чтения ввода")
	}
	pin, ok := t.ask("Введите PIN: ")
	if !ok {
		return errors.New("ошибка чтения ввода")
	}

	ticket, err := t.api.JoinRoom(ctx, code, pin)
	switch {
	case errors.Is(err, client_api.ErrForbidden):
		return errors.New("неверный PIN")
	case errors.Is(err, client_api.ErrNotFound):
		return errors.New("комната не найдена")
	case errors.Is(err, client_api.ErrConflict):
		return errors.New("в комнате уже двое")
	case err != nil:
		return err
	}
	return t.play(ctx, ticket)
}

func (t *TUI) Solo(ctx context.Context) error {
	var seed *int64
	raw, ok := t.ask("Seed (Enter - случайный): ")
	if !ok {
		return errors.New("ошибка чтения ввода")
	}
	if raw != "" {
		s, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("seed должен быть числом: %w", err)
		}
		seed = &s
	}

	ticket, err := t.api.CreateSolo(ctx, seed)
	if err != nil {
		return err
	}
	fmt.Printf("Одиночная комната %s, seed %d\n", ticket.Code, ticket.PoolSeed)
	return t.play(ctx, ticket)
}

// play runs one room until a match, expiry or the user quits.
func (t *TUI) play(ctx context.Context, ticket client_api.Ticket) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	t.ticket = ticket
	t.matched = make(chan int64, 1)
	t.expired = make(chan struct{}, 1)
	t.agent = client_agent.New(t.api.Slot(ticket.Code, ticket.Slot), client_agent.Config{})
	t.conn = client_conn.New(client_conn.Config{
		BaseURL: t.api.BaseURL(),
		Token:   t.api.Token(),
		Code:    ticket.Code,
		Slot:    ticket.Slot,
	}, func(env protocol.Envelope) { t.onEvent(ctx, env) })

	go func() {
		if err := t.conn.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			slog.Warn("connection stopped", slog.String("error", err.Error()))
		}
	}()

	select {
	case <-t.conn.Connected():
	case <-time.After(10 * time.Second):
		return errors.New("не удалось подключиться к комнате")
	}

	if err := t.agent.LoadInitial(ctx); err != nil {
		return fmt.Errorf("не удалось загрузить фильмы: %w", err)
	}

	defer func() {
		_ = t.conn.Leave()
	}()

	for {
		select {
		case id := <-t.matched:
			t.announceMatch(id)
			return nil
		case <-t.expired:
			fmt.Println("Комната истекла")
			return nil
		default:
		}

		item, ok := t.agent.Current()
		if !ok {
			if err := t.agent.FetchMore(ctx); err != nil {
				return err
			}
			if _, ok := t.agent.Current(); !ok {
				fmt.Println("Фильмы закончились, ждем партнера... (q - выйти)")
				if !t.waitMatch() {
					return nil
				}
				continue
			}
			continue
		}

		printCard(item)
		var line string
		select {
		case id := <-t.matched:
			t.announceMatch(id)
			return nil
		case <-t.expired:
			fmt.Println("Комната истекла")
			return nil
		case line, ok = <-t.input:
			if !ok {
				return nil
			}
		}

		var action string
		switch strings.ToLower(line) {
		case "l", "д":
			action = "like"
		case "s", "н":
			action = "skip"
		case "q":
			return nil
		default:
			fmt.Println("l - нравится, s - пропустить, q - выйти")
			continue
		}

		if err := t.conn.Swipe(item.Title.ID, action); err != nil {
			fmt.Printf("Свайп не отправлен: %v\n", err)
			continue
		}

		t.agent.BeginAnimation()
		t.agent.ConsumeNext()
		time.Sleep(animation)
		t.agent.SettleAnimation()

		if err := t.agent.FetchMore(ctx); err != nil {
			slog.Warn("failed to fetch more", slog.String("error", err.Error()))
		}
	}
}

func (t *TUI) waitMatch() bool {
	for {
		select {
		case id := <-t.matched:
			t.announceMatch(id)
			return false
		case <-t.expired:
			fmt.Println("Комната истекла")
			return false
		case line, ok := <-t.input:
			if !ok || line == "q" {
				return false
			}
		}
	}
}

func (t *TUI) onEvent(ctx context.Context, env protocol.Envelope) {
	if err := t.agent.HandleEvent(ctx, env); err != nil {
		slog.Warn("failed to apply event", slog.String("type", env.Type), slog.String("error", err.Error()))
	}

	switch env.Type {
	case protocol.TypeUserJoined:
		var p protocol.UserJoined
		if env.Decode(&p) == nil && p.Slot != t.ticket.Slot {
			fmt.Println("\n[партнер подключился]")
		}
	case protocol.TypeUserLeft:
		fmt.Println("\n[партнер отключился]")
	case protocol.TypeRoomReady:
		fmt.Println("\n[комната готова]")
	case protocol.TypeSwipeProgress:
		var p protocol.SwipeProgress
		if env.Decode(&p) == nil && p.Slot != t.ticket.Slot {
			fmt.Printf("\n[партнер просмотрел %d]\n", p.TotalSwiped)
		}
	case protocol.TypePartnerLiked:
		fmt.Println("\n[партнеру что-то понравилось]")
	case protocol.TypeMatchFound:
		var p protocol.MatchFound
		if env.Decode(&p) == nil {
			select {
			case t.matched <- p.TitleID:
			default:
			}
		}
	case protocol.TypeRoomExpired:
		select {
		case t.expired <- struct{}{}:
		default:
		}
	case protocol.TypeError:
		var p protocol.Error
		if env.Decode(&p) == nil {
			fmt.Printf("\n[ошибка: %s]\n", p.Message)
		}
	}
}

func (t *TUI) announceMatch(id int64) {
	for _, it := range t.agent.Items() {
		if it.Title.ID == id {
			fmt.Printf("\n*** Совпадение! %s (%d) ***\n", it.Title.Title, it.Title.Year)
			return
		}
	}
	fmt.Printf("\n*** Совпадение! Фильм #%d ***\n", id)
}

func printCard(item protocol.QueueItem) {
	fmt.Println("\n----------------------------------------")
	fmt.Printf("%s (%d)  ★ %.1f\n", item.Title.Title, item.Title.Year, item.Title.Rating)
	if len(item.Title.Genres) > 0 {
		fmt.Printf("Жанры: %s\n", strings.Join(item.Title.Genres, ", "))
	}
	if item.Title.Overview != "" {
		fmt.Println(item.Title.Overview)
	}
	switch item.Source {
	case "priority":
		fmt.Println("(из списка партнера)")
	case client_agent.SourcePartnerLike:
		fmt.Println("(понравилось партнеру)")
	}
	fmt.Print("l - нравится, s - пропустить, q - выйти: ")
}

func main() {
	baseURL := flag.String("api", "http://localhost:8080/api/v1", "API base URL")
	token := flag.String("token", "", "user token, issued by the server when empty")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	tui := NewTUI(*baseURL, *token)
	for {
		fmt.Println("\n=== Matchroom Console Client ===")
		fmt.Println("1. Создать комнату")
		fmt.Println("2. Войти в комнату")
		fmt.Println("3. Одиночный режим")
		fmt.Println("0. Выход")

		input, ok := tui.ask("Выберите действие: ")
		if !ok {
			return
		}

		var err error
		switch input {
		case "1":
			err = tui.CreateRoom(ctx)
		case "2":
			err = tui.JoinRoom(ctx)
		case "3":
			err = tui.Solo(ctx)
		case "0":
			fmt.Println("До свидания!")
			return
		default:
			fmt.Println("Неверный выбор")
		}
		if err != nil {
			fmt.Printf("Ошибка: %v\n", err)
		}
		if ctx.Err() != nil {
			return
		}
	}
}
