package repository

import (
	"context"
	"sync"

	"github.com/rmatsuoka/gameserver/internal/domain"
)

// InMemoryUserRepository keeps users in process memory. It backs tests and
// local development without a database.
type InMemoryUserRepository struct {
	mu     sync.RWMutex
	seq    int64
	users  map[int64]*domain.User
	tokens map[string]int64
}

func NewInMemoryUserRepository() *InMemoryUserRepository {
	return &InMemoryUserRepository{
		users:  make(map[int64]*domain.User),
		tokens: make(map[string]int64),
	}
}

func (r *InMemoryUserRepository) Create(ctx context.Context, user *domain.User, token string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tokens[token]; ok {
		return ErrTokenExists
	}

	r.seq++
	user.ID = r.seq
	stored := *user
	r.users[user.ID] = &stored
	r.tokens[token] = user.ID
	return nil
}

func (r *InMemoryUserRepository) GetByToken(ctx context.Context, token string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.tokens[token]
	if !ok {
		return nil, ErrUserNotFound
	}

	user := *r.users[id]
	return &user, nil
}

func (r *InMemoryUserRepository) Update(ctx context.Context, user *domain.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.ID]; !ok {
		return ErrUserNotFound
	}

	stored := *user
	r.users[user.ID] = &stored
	return nil
}

func (r *InMemoryUserRepository) getByID(id int64) (*domain.User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, false
	}
	copied := *user
	return &copied, true
}

type memberRecord struct {
	userID           int64
	selectDifficulty domain.LiveDifficulty
	judgeCountList   []int
	score            *int
}

// InMemoryRoomRepository keeps rooms and memberships in process memory.
// Transaction takes the single repository lock for the whole callback, which
// gives the same serialization the Postgres implementation gets from its row
// lock. It does not roll back on error; callers only mutate after their
// checks have passed, matching how the service layer uses it.
type InMemoryRoomRepository struct {
	mu      sync.Mutex
	seq     int64
	rooms   map[int64]*domain.Room
	members map[int64][]*memberRecord
	users   *InMemoryUserRepository
}

func NewInMemoryRoomRepository(users *InMemoryUserRepository) *InMemoryRoomRepository {
	return &InMemoryRoomRepository{
		rooms:   make(map[int64]*domain.Room),
		members: make(map[int64][]*memberRecord),
		users:   users,
	}
}

func (r *InMemoryRoomRepository) Transaction(ctx context.Context, fn func(RoomRepository) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return fn(&lockedRoomRepository{repo: r})
}

func (r *InMemoryRoomRepository) CreateRoom(ctx context.Context, room *domain.Room) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.createRoomLocked(room)
}

func (r *InMemoryRoomRepository) GetByID(ctx context.Context, roomID int64) (*domain.Room, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.getRoomLocked(roomID)
}

func (r *InMemoryRoomRepository) GetForUpdate(ctx context.Context, roomID int64) (*domain.Room, error) {
	return r.GetByID(ctx, roomID)
}

func (r *InMemoryRoomRepository) ListWaiting(ctx context.Context, liveID int64) ([]domain.RoomInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.listWaitingLocked(liveID)
}

func (r *InMemoryRoomRepository) SetStatus(ctx context.Context, roomID int64, status domain.RoomStatus) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.setStatusLocked(roomID, status)
}

func (r *InMemoryRoomRepository) SetOwner(ctx context.Context, roomID, ownerID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.setOwnerLocked(roomID, ownerID)
}

func (r *InMemoryRoomRepository) AddMember(ctx context.Context, roomID, userID int64, difficulty domain.LiveDifficulty) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.addMemberLocked(roomID, userID, difficulty)
}

func (r *InMemoryRoomRepository) RemoveMember(ctx context.Context, roomID, userID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.removeMemberLocked(roomID, userID)
}

func (r *InMemoryRoomRepository) CountMembers(ctx context.Context, roomID int64) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.members[roomID]), nil
}

func (r *InMemoryRoomRepository) ListMembers(ctx context.Context, roomID int64) ([]domain.RoomMember, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.listMembersLocked(roomID)
}

func (r *InMemoryRoomRepository) SaveResult(ctx context.Context, roomID, userID int64, judgeCountList []int, score int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.saveResultLocked(roomID, userID, judgeCountList, score)
}

func (r *InMemoryRoomRepository) ListResults(ctx context.Context, roomID int64) ([]domain.ResultUser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.listResultsLocked(roomID)
}

func (r *InMemoryRoomRepository) createRoomLocked(room *domain.Room) error {
	r.seq++
	room.ID = r.seq
	stored := *room
	r.rooms[room.ID] = &stored
	return nil
}

func (r *InMemoryRoomRepository) getRoomLocked(roomID int64) (*domain.Room, error) {
	room, ok := r.rooms[roomID]
	if !ok {
		return nil, ErrRoomNotFound
	}
	copied := *room
	return &copied, nil
}

func (r *InMemoryRoomRepository) listWaitingLocked(liveID int64) ([]domain.RoomInfo, error) {
	infos := make([]domain.RoomInfo, 0)
	for id, room := range r.rooms {
		if room.Status != domain.StatusWaiting {
			continue
		}
		if liveID != 0 && room.LiveID != liveID {
			continue
		}
		count := len(r.members[id])
		if count == 0 {
			continue
		}
		infos = append(infos, domain.RoomInfo{
			RoomID:          id,
			LiveID:          room.LiveID,
			JoinedUserCount: count,
			MaxUserCount:    domain.MaxRoomUsers,
		})
	}
	return infos, nil
}

func (r *InMemoryRoomRepository) setStatusLocked(roomID int64, status domain.RoomStatus) error {
	room, ok := r.rooms[roomID]
	if !ok {
		return ErrRoomNotFound
	}
	room.Status = status
	return nil
}

func (r *InMemoryRoomRepository) setOwnerLocked(roomID, ownerID int64) error {
	room, ok := r.rooms[roomID]
	if !ok {
		return ErrRoomNotFound
	}
	room.OwnerID = ownerID
	return nil
}

func (r *InMemoryRoomRepository) addMemberLocked(roomID, userID int64, difficulty domain.LiveDifficulty) error {
	for _, m := range r.members[roomID] {
		if m.userID == userID {
			return ErrAlreadyJoined
		}
	}
	r.members[roomID] = append(r.members[roomID], &memberRecord{
		userID:           userID,
		selectDifficulty: difficulty,
	})
	return nil
}

func (r *InMemoryRoomRepository) removeMemberLocked(roomID, userID int64) error {
	members := r.members[roomID]
	for i, m := range members {
		if m.userID == userID {
			r.members[roomID] = append(members[:i], members[i+1:]...)
			return nil
		}
	}
	return ErrMemberNotFound
}

func (r *InMemoryRoomRepository) listMembersLocked(roomID int64) ([]domain.RoomMember, error) {
	records := r.members[roomID]
	members := make([]domain.RoomMember, 0, len(records))
	for _, m := range records {
		member := domain.RoomMember{
			UserID:           m.userID,
			SelectDifficulty: m.selectDifficulty,
		}
		if r.users != nil {
			if user, ok := r.users.getByID(m.userID); ok {
				member.Name = user.Name
				member.LeaderCardID = user.LeaderCardID
			}
		}
		members = append(members, member)
	}
	return members, nil
}

func (r *InMemoryRoomRepository) saveResultLocked(roomID, userID int64, judgeCountList []int, score int) error {
	for _, m := range r.members[roomID] {
		if m.userID == userID {
			judges := make([]int, len(judgeCountList))
			copy(judges, judgeCountList)
			m.judgeCountList = judges
			s := score
			m.score = &s
			return nil
		}
	}
	return ErrMemberNotFound
}

func (r *InMemoryRoomRepository) listResultsLocked(roomID int64) ([]domain.ResultUser, error) {
	results := make([]domain.ResultUser, 0)
	for _, m := range r.members[roomID] {
		if m.score == nil {
			continue
		}
		judges := make([]int, len(m.judgeCountList))
		copy(judges, m.judgeCountList)
		results = append(results, domain.ResultUser{
			UserID:         m.userID,
			JudgeCountList: judges,
			Score:          *m.score,
		})
	}
	return results, nil
}

// lockedRoomRepository is the transactional view handed to Transaction
// callbacks. The parent repository's lock is already held, so it calls the
// locked variants directly.
type lockedRoomRepository struct {
	repo *InMemoryRoomRepository
}

func (l *lockedRoomRepository) Transaction(ctx context.Context, fn func(RoomRepository) error) error {
	return fn(l)
}

func (l *lockedRoomRepository) CreateRoom(ctx context.Context, room *domain.Room) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return l.repo.createRoomLocked(room)
}

func (l *lockedRoomRepository) GetByID(ctx context.Context, roomID int64) (*domain.Room, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return l.repo.getRoomLocked(roomID)
}

func (l *lockedRoomRepository) GetForUpdate(ctx context.Context, roomID int64) (*domain.Room, error) {
	return l.GetByID(ctx, roomID)
}

func (l *lockedRoomRepository) ListWaiting(ctx context.Context, liveID int64) ([]domain.RoomInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return l.repo.listWaitingLocked(liveID)
}

func (l *lockedRoomRepository) SetStatus(ctx context.Context, roomID int64, status domain.RoomStatus) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return l.repo.setStatusLocked(roomID, status)
}

func (l *lockedRoomRepository) SetOwner(ctx context.Context, roomID, ownerID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return l.repo.setOwnerLocked(roomID, ownerID)
}

func (l *lockedRoomRepository) AddMember(ctx context.Context, roomID, userID int64, difficulty domain.LiveDifficulty) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return l.repo.addMemberLocked(roomID, userID, difficulty)
}

func (l *lockedRoomRepository) RemoveMember(ctx context.Context, roomID, userID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return l.repo.removeMemberLocked(roomID, userID)
}

func (l *lockedRoomRepository) CountMembers(ctx context.Context, roomID int64) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return len(l.repo.members[roomID]), nil
}

func (l *lockedRoomRepository) ListMembers(ctx context.Context, roomID int64) ([]domain.RoomMember, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return l.repo.listMembersLocked(roomID)
}

func (l *lockedRoomRepository) SaveResult(ctx context.Context, roomID, userID int64, judgeCountList []int, score int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return l.repo.saveResultLocked(roomID, userID, judgeCountList, score)
}

func (l *lockedRoomRepository) ListResults(ctx context.Context, roomID int64) ([]domain.ResultUser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return l.repo.listResultsLocked(roomID)
}
