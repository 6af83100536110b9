package optimizer

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/fpl-optimizer/internal/models"
)

const (
	valueEpsilon       = 1e-9
	incumbentSlack     = 1e-6
	contextCheckPeriod = 1024
	lagrangeIterations = 14
)

// SquadSelector picks the 15-player squad with the highest projected value
// by exact branch-and-bound over a 0/1 integer program. It keeps no state
// between calls and is safe for concurrent use.
type SquadSelector struct {
	logger *logrus.Entry
}

// SquadStats reports solver effort for one call
type SquadStats struct {
	Candidates    int           `json:"candidates"`
	NodesExplored int64         `json:"nodes_explored"`
	RootBound     float64       `json:"root_bound"`
	SolveTime     time.Duration `json:"solve_time"`
}

// NewSquadSelector creates a squad selector
func NewSquadSelector(logger *logrus.Logger) *SquadSelector {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &SquadSelector{logger: logger.WithField("component", "squad_selector")}
}

// candidate is a free decision variable of the program
type candidate struct {
	id        int
	pos       int
	club      int
	cost      int
	value     float64
	incumbent bool
}

// squadSearch is the per-call solver state. Candidates are laid out position
// by position, so segStart[p] .. segStart[p+1] holds position p.
type squadSearch struct {
	ctx        context.Context
	cands      []candidate
	segStart   [5]int
	posLists   [4][]int
	nextInPos  [4][]int
	suffixInc  []int
	incLists   [4][]int
	tables     [4]budgetTable
	tails      [4][]float64
	tailCap    int
	need       [4]int
	clubCount  []int
	fullClubs  int
	clubCap    int
	budgetLeft int
	drops      int
	maxDrops   int
	value      float64
	chosen     []int

	best      float64
	bestPicks []int
	found     bool
	nodes     int64
	aborted   bool

	clubScratch []int
}

// SelectSquad solves the squad program for one request
func (s *SquadSelector) SelectSquad(ctx context.Context, players []models.Player, valuations models.Valuations, req models.OptimizationRequest) (*models.Squad, error) {
	squad, _, err := s.SelectSquadWithStats(ctx, players, valuations, req)
	return squad, err
}

// SelectSquadWithStats is SelectSquad plus solver statistics
func (s *SquadSelector) SelectSquadWithStats(ctx context.Context, players []models.Player, valuations models.Valuations, req models.OptimizationRequest) (*models.Squad, *SquadStats, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	startTime := time.Now()
	log := s.logger.WithField("optimization_id", uuid.New().String())

	sc, err := NewSquadConstraints(req)
	if err != nil {
		return nil, nil, err
	}
	if len(players) == 0 {
		return nil, nil, fmt.Errorf("%w: empty player pool", ErrNoData)
	}

	log.WithFields(logrus.Fields{
		"total_players":  len(players),
		"budget":         models.CostToMillions(sc.Budget),
		"max_per_club":   sc.MaxPlayersPerClub,
		"preferred":      len(sc.Preferred),
		"excluded":       len(sc.Excluded),
		"existing_squad": len(sc.Existing) > 0,
		"max_transfers":  sc.MaxTransfers,
	}).Info("Starting squad optimization")

	index := make(map[int]models.Player, len(players))
	for _, p := range players {
		if err := p.Validate(); err != nil {
			log.WithError(err).Warn("Skipping invalid player record")
			continue
		}
		if _, dup := index[p.ID]; dup {
			return nil, nil, fmt.Errorf("%w: duplicate player id %d in pool", ErrInvalidRequest, p.ID)
		}
		index[p.ID] = p
	}

	eligible := make(map[int]models.Player, len(index))
	for id, p := range index {
		if sc.Excluded[id] || !p.Available() {
			continue
		}
		eligible[id] = p
	}

	available := make(map[models.Position]int)
	for _, p := range eligible {
		available[p.Position]++
	}
	for _, pos := range models.AllPositions {
		if available[pos] < sc.PositionQuota[pos] {
			return nil, nil, fmt.Errorf("%w: need %d eligible %s players, have %d", ErrNoData, sc.PositionQuota[pos], pos, available[pos])
		}
	}

	search, err := s.buildSearch(ctx, sc, index, eligible, valuations)
	if err != nil {
		return nil, nil, err
	}

	var rootBound float64
	bounded := false
	if ctx.Err() != nil {
		search.aborted = true
	} else if bound, ok := search.upperBound(0); ok {
		rootBound, bounded = search.value+bound, true
		search.dive()
		search.dfs(0)
	}

	stats := &SquadStats{
		Candidates:    len(search.cands),
		NodesExplored: search.nodes,
		RootBound:     rootBound,
		SolveTime:     time.Since(startTime),
	}
	fields := logrus.Fields{
		"candidates":     stats.Candidates,
		"nodes_explored": stats.NodesExplored,
		"solve_time":     stats.SolveTime,
	}
	if bounded {
		fields["root_bound"] = models.Round2(rootBound)
	}

	if search.aborted {
		log.WithFields(fields).Warn("Squad optimization abandoned")
		return nil, stats, fmt.Errorf("%w: squad search abandoned after %d nodes: %v", ErrTimeout, search.nodes, ctx.Err())
	}
	if !search.found {
		log.WithFields(fields).Info("No feasible squad")
		return nil, stats, fmt.Errorf("%w: no squad satisfies budget, quota, club and transfer constraints", ErrInfeasible)
	}

	squad := s.buildSquad(sc, index, valuations, search)
	if err := sc.ValidateSquad(squad, index); err != nil {
		return nil, stats, fmt.Errorf("solver produced an invalid squad: %w", err)
	}

	fields["total_cost"] = models.CostToMillions(squad.TotalCost)
	fields["projected_value"] = models.Round2(squad.ProjectedValue)
	log.WithFields(fields).Info("Squad optimization completed")

	return squad, stats, nil
}

// buildSearch fixes preferred players, checks their feasibility and lays out
// the free candidates in canonical order
func (s *SquadSelector) buildSearch(ctx context.Context, sc *SquadConstraints, index, eligible map[int]models.Player, valuations models.Valuations) (*squadSearch, error) {
	clubIndex := make(map[int]int)
	clubOf := func(clubID int) int {
		idx, ok := clubIndex[clubID]
		if !ok {
			idx = len(clubIndex)
			clubIndex[clubID] = idx
		}
		return idx
	}

	// dense club indices follow ascending club id so layout never depends on map order
	clubIDs := make(map[int]bool)
	for _, p := range eligible {
		clubIDs[p.ClubID] = true
	}
	for _, id := range sortedIDs(clubIDs) {
		clubOf(id)
	}

	search := &squadSearch{
		ctx:        ctx,
		clubCap:    sc.MaxPlayersPerClub,
		budgetLeft: sc.Budget,
		maxDrops:   sc.MaxTransfers,
		clubCount:  make([]int, len(clubIndex)),
		best:       math.Inf(-1),
	}
	for i, pos := range models.AllPositions {
		search.need[i] = sc.PositionQuota[pos]
	}

	for _, id := range sortedIDs(sc.Preferred) {
		p, ok := index[id]
		if !ok {
			return nil, fmt.Errorf("%w: preferred player %d not in player pool", ErrInvalidRequest, id)
		}
		if _, ok := eligible[id]; !ok {
			return nil, fmt.Errorf("%w: preferred player %d is unavailable", ErrInfeasible, id)
		}
		pos := p.Position.Order()
		search.need[pos]--
		if search.need[pos] < 0 {
			return nil, fmt.Errorf("%w: too many preferred %s players for quota %d", ErrInfeasible, p.Position, sc.PositionQuota[p.Position])
		}
		club := clubOf(p.ClubID)
		search.clubCount[club]++
		if search.clubCount[club] > sc.MaxPlayersPerClub {
			return nil, fmt.Errorf("%w: preferred players exceed %d from club %d", ErrInfeasible, sc.MaxPlayersPerClub, p.ClubID)
		}
		search.budgetLeft -= p.Cost
		search.value += valuations.Get(id)
	}
	if search.budgetLeft < 0 {
		return nil, fmt.Errorf("%w: preferred players cost %.1f over budget", ErrInfeasible, models.CostToMillions(-search.budgetLeft))
	}
	for _, n := range search.clubCount {
		if n == search.clubCap {
			search.fullClubs++
		}
	}

	// incumbents that can no longer be picked are forced drops
	for id := range sc.Existing {
		if sc.Preferred[id] {
			continue
		}
		if _, ok := eligible[id]; !ok {
			search.drops++
		}
	}
	if search.maxDrops >= 0 && search.drops > search.maxDrops {
		return nil, fmt.Errorf("%w: %d existing players are unavailable or excluded, transfer limit is %d", ErrInfeasible, search.drops, search.maxDrops)
	}

	cands := make([]candidate, 0, len(eligible))
	for id, p := range eligible {
		if sc.Preferred[id] {
			continue
		}
		cands = append(cands, candidate{
			id:        id,
			pos:       p.Position.Order(),
			club:      clubOf(p.ClubID),
			cost:      p.Cost,
			value:     valuations.Get(id),
			incumbent: sc.Existing[id],
		})
	}
	sort.Slice(cands, func(i, j int) bool {
		if cands[i].pos != cands[j].pos {
			return cands[i].pos < cands[j].pos
		}
		if cands[i].value != cands[j].value {
			return cands[i].value > cands[j].value
		}
		if cands[i].cost != cands[j].cost {
			return cands[i].cost < cands[j].cost
		}
		return cands[i].id < cands[j].id
	})
	search.cands = cands

	n := len(cands)
	for i, c := range cands {
		search.posLists[c.pos] = append(search.posLists[c.pos], i)
		if c.incumbent {
			search.incLists[c.pos] = append(search.incLists[c.pos], i)
		}
	}
	for pos := 0; pos < 4; pos++ {
		search.segStart[pos+1] = search.segStart[pos] + len(search.posLists[pos])
		next := make([]int, n+1)
		offset := len(search.posLists[pos])
		for i := n; i >= 0; i-- {
			if i < n && cands[i].pos == pos {
				offset--
			}
			next[i] = offset
		}
		search.nextInPos[pos] = next
	}
	search.suffixInc = make([]int, n+1)
	for i := n - 1; i >= 0; i-- {
		search.suffixInc[i] = search.suffixInc[i+1]
		if cands[i].incumbent {
			search.suffixInc[i]++
		}
	}
	search.clubScratch = make([]int, len(clubIndex))

	tailCap := 0
	for pos := 0; pos < 4; pos++ {
		segment := cands[search.segStart[pos]:search.segStart[pos+1]]
		search.tables[pos] = newBudgetTable(segment, search.need[pos], search.budgetLeft)
		tailCap += search.tables[pos].width
	}
	if tailCap > search.budgetLeft {
		tailCap = search.budgetLeft
	}
	search.tailCap = tailCap
	search.tails[3] = make([]float64, tailCap+1)
	for pos := 3; pos > 0; pos-- {
		t := &search.tables[pos]
		search.tails[pos-1] = combine(t.row(0, t.need), search.tails[pos])
	}

	return search, nil
}

// budgetTable holds, for one position, the best value of exactly k candidates
// taken from offset off onwards at a total cost of at most b
type budgetTable struct {
	need  int
	width int
	data  []float64
}

func newBudgetTable(segment []candidate, need, budget int) budgetTable {
	costs := make([]int, len(segment))
	for i, c := range segment {
		costs[i] = c.cost
	}
	sort.Sort(sort.Reverse(sort.IntSlice(costs)))
	width := 0
	for i := 0; i < need && i < len(costs); i++ {
		width += costs[i]
	}
	if width > budget {
		width = budget
	}

	t := budgetTable{
		need:  need,
		width: width,
		data:  make([]float64, (len(segment)+1)*(need+1)*(width+1)),
	}
	for k := 1; k <= need; k++ {
		row := t.row(len(segment), k)
		for b := range row {
			row[b] = math.Inf(-1)
		}
	}
	for off := len(segment) - 1; off >= 0; off-- {
		c := segment[off]
		for k := 0; k <= need; k++ {
			cur := t.row(off, k)
			copy(cur, t.row(off+1, k))
			if k == 0 || c.cost > width {
				continue
			}
			prev := t.row(off+1, k-1)
			for b := c.cost; b <= width; b++ {
				if v := c.value + prev[b-c.cost]; v > cur[b] {
					cur[b] = v
				}
			}
		}
	}
	return t
}

// row is indexed by budget; b above width reads as width
func (t *budgetTable) row(off, k int) []float64 {
	start := (off*(t.need+1) + k) * (t.width + 1)
	return t.data[start : start+t.width+1]
}

// combine is the max-plus convolution of head with tail over tail's budget range
func combine(head, tail []float64) []float64 {
	out := make([]float64, len(tail))
	for b := range out {
		best := math.Inf(-1)
		for x := 0; x <= b && x < len(head); x++ {
			if math.IsInf(head[x], -1) {
				continue
			}
			if v := head[x] + tail[b-x]; v > best {
				best = v
			}
		}
		out[b] = best
	}
	return out
}

func (s *squadSearch) remainingNeed() int {
	return s.need[0] + s.need[1] + s.need[2] + s.need[3]
}

func (s *squadSearch) canTake(c candidate) bool {
	return s.need[c.pos] > 0 && s.clubCount[c.club] < s.clubCap && c.cost <= s.budgetLeft
}

func (s *squadSearch) take(i int) {
	c := s.cands[i]
	s.need[c.pos]--
	s.clubCount[c.club]++
	if s.clubCount[c.club] == s.clubCap {
		s.fullClubs++
	}
	s.budgetLeft -= c.cost
	s.value += c.value
	s.chosen = append(s.chosen, i)
}

func (s *squadSearch) release(i int) {
	c := s.cands[i]
	s.chosen = s.chosen[:len(s.chosen)-1]
	s.value -= c.value
	s.budgetLeft += c.cost
	if s.clubCount[c.club] == s.clubCap {
		s.fullClubs--
	}
	s.clubCount[c.club]--
	s.need[c.pos]++
}

// dive walks the tree once, always following the child with the better bound,
// to seed the incumbent. The threshold sits just below the squad it finds so
// the full search still reaches that squad and ties resolve in canonical order.
func (s *squadSearch) dive() {
	drops, depth := s.drops, len(s.chosen)
	defer func() {
		for len(s.chosen) > depth {
			s.release(s.chosen[len(s.chosen)-1])
		}
		s.drops = drops
	}()

	for i := 0; ; {
		if s.remainingNeed() == 0 {
			if s.maxDrops < 0 || s.drops+s.suffixInc[i] <= s.maxDrops {
				s.best = s.value - incumbentSlack
				s.bestPicks = append(s.bestPicks[:0], s.chosen...)
				s.found = true
			}
			return
		}
		if i >= len(s.cands) {
			return
		}
		c := s.cands[i]
		if s.need[c.pos] == 0 {
			end := s.segStart[c.pos+1]
			s.drops += s.suffixInc[i] - s.suffixInc[end]
			i = end
			continue
		}

		withIt, withoutIt := math.Inf(-1), math.Inf(-1)
		if s.canTake(c) {
			s.take(i)
			if bound, ok := s.upperBound(i + 1); ok {
				withIt = s.value + bound
			}
			s.release(i)
		}
		if !c.incumbent || s.maxDrops < 0 || s.drops < s.maxDrops {
			if c.incumbent {
				s.drops++
			}
			if bound, ok := s.upperBound(i + 1); ok {
				withoutIt = s.value + bound
			}
			if c.incumbent {
				s.drops--
			}
		}

		switch {
		case math.IsInf(withIt, -1) && math.IsInf(withoutIt, -1):
			return
		case withIt >= withoutIt:
			s.take(i)
		case c.incumbent:
			s.drops++
		}
		i++
	}
}

func (s *squadSearch) dfs(i int) {
	if s.aborted {
		return
	}
	s.nodes++
	if s.nodes%contextCheckPeriod == 0 && s.ctx.Err() != nil {
		s.aborted = true
		return
	}

	remaining := s.remainingNeed()
	if remaining == 0 {
		// every undecided incumbent is dropped from here on
		if s.maxDrops >= 0 && s.drops+s.suffixInc[i] > s.maxDrops {
			return
		}
		if s.value > s.best+valueEpsilon {
			s.best = s.value
			s.bestPicks = append(s.bestPicks[:0], s.chosen...)
			s.found = true
		}
		return
	}
	if i >= len(s.cands) {
		return
	}
	if s.maxDrops >= 0 {
		forced := s.suffixInc[i] - remaining
		if forced > 0 && s.drops+forced > s.maxDrops {
			return
		}
	}

	bound, feasible := s.upperBound(i)
	if !feasible || s.value+bound <= s.best+valueEpsilon {
		return
	}

	c := s.cands[i]
	if s.need[c.pos] == 0 {
		// position filled: leave out the rest of its segment in one step
		end := s.segStart[c.pos+1]
		skipped := s.suffixInc[i] - s.suffixInc[end]
		s.drops += skipped
		if s.maxDrops < 0 || s.drops <= s.maxDrops {
			s.dfs(end)
		}
		s.drops -= skipped
		return
	}

	if s.canTake(c) {
		s.take(i)
		s.dfs(i + 1)
		s.release(i)
	}

	if c.incumbent {
		s.drops++
		if s.maxDrops < 0 || s.drops <= s.maxDrops {
			s.dfs(i + 1)
		}
		s.drops--
		return
	}
	s.dfs(i + 1)
}

// upperBound bounds the value still obtainable from candidates i..n-1.
// The budget tables solve the remaining picks exactly with club caps relaxed.
// Once a club is full the Lagrangian bound, which leaves that club out, is
// also taken and the smaller of the two wins.
func (s *squadSearch) upperBound(i int) (float64, bool) {
	if i >= len(s.cands) {
		return 0, s.remainingNeed() == 0
	}
	pos := s.cands[i].pos
	for earlier := 0; earlier < pos; earlier++ {
		if s.need[earlier] > 0 {
			return 0, false
		}
	}

	bound := s.tableBound(pos, i-s.segStart[pos])
	if math.IsInf(bound, -1) {
		return 0, false
	}
	if !s.clubRoom(i, s.remainingNeed()) {
		return 0, false
	}
	if s.fullClubs > 0 {
		if relaxed := s.lagrangeBound(i); relaxed < bound {
			bound = relaxed
		}
	}
	if s.maxDrops >= 0 {
		remaining := s.remainingNeed()
		swaps := s.maxDrops - s.drops - (s.suffixInc[i] - remaining)
		if swaps < 0 {
			return 0, false
		}
		if swaps < remaining {
			relaxed := s.swapBound(i, swaps)
			if math.IsInf(relaxed, -1) {
				return 0, false
			}
			if relaxed < bound {
				bound = relaxed
			}
		}
	}
	return bound, true
}

// swapBound bounds the subproblem when at most swaps of the remaining picks
// may come from outside the existing squad. Per position it keeps the best
// incumbents and the best newcomers that still fit, relaxing budget and clubs.
func (s *squadSearch) swapBound(i, swaps int) float64 {
	var best, next [models.SquadSize + 1]float64
	for r := range best {
		best[r] = math.Inf(-1)
	}
	best[0] = 0

	for pos := s.cands[i].pos; pos < 4; pos++ {
		k := s.need[pos]
		if k == 0 {
			continue
		}
		from := max(i, s.segStart[pos])

		var kept, fresh [models.SquadSize]float64
		nk := 0
		for _, idx := range s.incLists[pos] {
			if nk == k {
				break
			}
			if c := s.cands[idx]; idx >= from && s.open(c) {
				kept[nk] = c.value
				nk++
			}
		}
		nf, limit := 0, min(k, swaps)
		for idx := from; idx < s.segStart[pos+1] && nf < limit; idx++ {
			if c := s.cands[idx]; !c.incumbent && s.open(c) {
				fresh[nf] = c.value
				nf++
			}
		}

		for r := range next {
			next[r] = math.Inf(-1)
		}
		for m := 0; m <= limit; m++ {
			if k-m > nk || m > nf {
				continue
			}
			g := 0.0
			for _, v := range kept[:k-m] {
				g += v
			}
			for _, v := range fresh[:m] {
				g += v
			}
			for r := 0; r+m <= swaps; r++ {
				if v := best[r] + g; v > next[r+m] {
					next[r+m] = v
				}
			}
		}
		best = next
	}

	result := math.Inf(-1)
	for _, v := range best[:swaps+1] {
		if v > result {
			result = v
		}
	}
	return result
}

// tableBound splits the remaining budget between the current position, read
// from its table at offset off, and the untouched positions after it
func (s *squadSearch) tableBound(pos, off int) float64 {
	tail := s.tails[pos]
	k := s.need[pos]
	if k == 0 {
		return tail[min(s.budgetLeft, s.tailCap)]
	}

	t := &s.tables[pos]
	row := t.row(off, k)
	limit := min(s.budgetLeft, t.width)
	best := math.Inf(-1)
	for x := 0; x <= limit; x++ {
		if math.IsInf(row[x], -1) {
			continue
		}
		if v := row[x] + tail[min(s.budgetLeft-x, s.tailCap)]; v > best {
			best = v
		}
	}
	return best
}

// lagrangeBound relaxes integrality and dualises the budget over the open
// candidates: for any lambda >= 0, lambda*B plus the best need[pos] values
// of (v - lambda*c) per position bounds the subproblem from above
func (s *squadSearch) lagrangeBound(i int) float64 {
	best, spend := s.dual(i, 0)
	if spend <= s.budgetLeft {
		return best
	}

	lo, hi := 0.0, s.maxRatio(i)
	for iter := 0; iter < lagrangeIterations; iter++ {
		mid := (lo + hi) / 2
		g, spendMid := s.dual(i, mid)
		if g < best {
			best = g
		}
		if spendMid > s.budgetLeft {
			lo = mid
		} else {
			hi = mid
		}
	}
	if g, _ := s.dual(i, hi); g < best {
		best = g
	}
	return best
}

// dual evaluates the Lagrangian at lambda and returns the cost of its maximiser
func (s *squadSearch) dual(i int, lambda float64) (float64, int) {
	total := lambda * float64(s.budgetLeft)
	spend := 0
	for pos := 0; pos < 4; pos++ {
		r := s.need[pos]
		if r == 0 {
			continue
		}
		var topScore [5]float64
		var topCost [5]int
		k := 0
		for _, idx := range s.posLists[pos][s.nextInPos[pos][i]:] {
			c := s.cands[idx]
			if !s.open(c) {
				continue
			}
			score := c.value - lambda*float64(c.cost)
			if k == r && score <= topScore[k-1] {
				continue
			}
			j := k
			if k < r {
				k++
			} else {
				j = r - 1
			}
			for j > 0 && topScore[j-1] < score {
				topScore[j] = topScore[j-1]
				topCost[j] = topCost[j-1]
				j--
			}
			topScore[j] = score
			topCost[j] = c.cost
		}
		for j := 0; j < k; j++ {
			total += topScore[j]
			spend += topCost[j]
		}
	}
	return total, spend
}

// clubRoom checks that clubs below the cap can still seat the remaining picks
func (s *squadSearch) clubRoom(i, remaining int) bool {
	if remaining == 0 {
		return true
	}
	room := s.clubScratch
	for k := range room {
		room[k] = s.clubCap - s.clubCount[k]
	}
	seats := 0
	for _, c := range s.cands[i:] {
		if s.need[c.pos] == 0 || room[c.club] == 0 || c.cost > s.budgetLeft {
			continue
		}
		room[c.club]--
		seats++
		if seats >= remaining {
			return true
		}
	}
	return false
}

func (s *squadSearch) maxRatio(i int) float64 {
	ratio := 0.0
	for _, c := range s.cands[i:] {
		if r := c.value / float64(c.cost); r > ratio {
			ratio = r
		}
	}
	return ratio
}

func (s *squadSearch) open(c candidate) bool {
	return s.clubCount[c.club] < s.clubCap && c.cost <= s.budgetLeft
}

func (s *SquadSelector) buildSquad(sc *SquadConstraints, index map[int]models.Player, valuations models.Valuations, search *squadSearch) *models.Squad {
	selected := make(map[int]bool, models.SquadSize)
	for id := range sc.Preferred {
		selected[id] = true
	}
	for _, idx := range search.bestPicks {
		selected[search.cands[idx].id] = true
	}

	ids := sortedIDs(selected)
	sort.SliceStable(ids, func(i, j int) bool {
		return index[ids[i]].Position.Order() < index[ids[j]].Position.Order()
	})

	squad := &models.Squad{PlayerIDs: ids}
	for _, id := range ids {
		squad.TotalCost += index[id].Cost
		squad.ProjectedValue += valuations.Get(id)
	}

	if len(sc.Existing) > 0 {
		squad.TransfersIn = []int{}
		squad.TransfersOut = []int{}
		for _, id := range ids {
			if !sc.Existing[id] {
				squad.TransfersIn = append(squad.TransfersIn, id)
			}
		}
		for _, id := range sortedIDs(sc.Existing) {
			if !selected[id] {
				squad.TransfersOut = append(squad.TransfersOut, id)
			}
		}
	}
	return squad
}
