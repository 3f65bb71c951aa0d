package community

import (
	"fmt"
	"sort"

	"github.com/nevergoodstudy-hub/wechat-article-summarizer-sub002/internal/core/model"
)

// Detector groups the entities of a knowledge graph into communities.
type Detector interface {
	Detect(graph *model.KnowledgeGraph) ([]model.Community, error)
	Name() string
}

// ConnectedComponents detects communities as the connected components of the
// undirected entity graph. Singleton entities form single-member communities
// so every entity belongs to exactly one.
type ConnectedComponents struct{}

func NewConnectedComponents() *ConnectedComponents {
	return &ConnectedComponents{}
}

func (d *ConnectedComponents) Name() string { return "connected-components" }

func (d *ConnectedComponents) Detect(graph *model.KnowledgeGraph) ([]model.Community, error) {
	if graph == nil || graph.EntityCount() == 0 {
		return nil, nil
	}

	adj := adjacency(graph)

	visited := make(map[string]bool)
	var communities []model.Community
	for _, entity := range graph.Entities() {
		if visited[entity.ID] {
			continue
		}
		members := bfs(entity.ID, adj, visited)
		communities = append(communities, model.Community{
			ID:        fmt.Sprintf("community_%d", len(communities)),
			Level:     0,
			EntityIDs: members,
			Title:     fmt.Sprintf("社区 %d", len(communities)+1),
			Rank:      float64(len(members)),
		})
	}
	return communities, nil
}

// LabelPropagation runs weighted label propagation over the entity graph.
// Parallel relationships between the same pair count as a stronger tie. Ties
// between candidate labels break to the lexicographically largest label so
// repeated runs on the same graph converge identically.
type LabelPropagation struct {
	MaxIterations int
}

func NewLabelPropagation() *LabelPropagation {
	return &LabelPropagation{MaxIterations: 20}
}

func (d *LabelPropagation) Name() string { return "label-propagation" }

func (d *LabelPropagation) Detect(graph *model.KnowledgeGraph) ([]model.Community, error) {
	if graph == nil || graph.EntityCount() == 0 {
		return nil, nil
	}

	entities := graph.Entities()
	order := make([]string, len(entities))
	labels := make(map[string]string, len(entities))
	for i, entity := range entities {
		order[i] = entity.ID
		labels[entity.ID] = entity.ID
	}

	weights := make(map[string]map[string]int)
	for _, id := range order {
		weights[id] = make(map[string]int)
	}
	for _, rel := range graph.Relationships() {
		if _, ok := weights[rel.SourceID]; !ok {
			continue
		}
		if _, ok := weights[rel.TargetID]; !ok {
			continue
		}
		weights[rel.SourceID][rel.TargetID]++
		weights[rel.TargetID][rel.SourceID]++
	}

	for iter := 0; iter < d.MaxIterations; iter++ {
		changed := 0
		for _, u := range order {
			neighbors := weights[u]
			if len(neighbors) == 0 {
				continue
			}

			counts := make(map[string]int)
			maxCount := 0
			for v, weight := range neighbors {
				label := labels[v]
				counts[label] += weight
				if counts[label] > maxCount {
					maxCount = counts[label]
				}
			}

			var candidates []string
			for label, count := range counts {
				if count == maxCount {
					candidates = append(candidates, label)
				}
			}
			sort.Strings(candidates)
			best := candidates[len(candidates)-1]
			if labels[u] != best {
				labels[u] = best
				changed++
			}
		}
		if changed == 0 {
			break
		}
	}

	grouped := make(map[string][]string)
	var labelOrder []string
	for _, id := range order {
		label := labels[id]
		if _, ok := grouped[label]; !ok {
			labelOrder = append(labelOrder, label)
		}
		grouped[label] = append(grouped[label], id)
	}

	communities := make([]model.Community, 0, len(labelOrder))
	for i, label := range labelOrder {
		members := grouped[label]
		communities = append(communities, model.Community{
			ID:        fmt.Sprintf("community_%d", i),
			Level:     0,
			EntityIDs: members,
			Title:     fmt.Sprintf("社区 %d", i+1),
			Rank:      float64(len(members)),
		})
	}
	return communities, nil
}

func adjacency(graph *model.KnowledgeGraph) map[string][]string {
	adj := make(map[string][]string)
	for _, rel := range graph.Relationships() {
		if _, ok := graph.GetEntity(rel.SourceID); !ok {
			continue
		}
		if _, ok := graph.GetEntity(rel.TargetID); !ok {
			continue
		}
		adj[rel.SourceID] = append(adj[rel.SourceID], rel.TargetID)
		adj[rel.TargetID] = append(adj[rel.TargetID], rel.SourceID)
	}
	return adj
}

func bfs(start string, adj map[string][]string, visited map[string]bool) []string {
	visited[start] = true
	queue := []string{start}
	var members []string
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		members = append(members, u)
		for _, v := range adj[u] {
			if !visited[v] {
				visited[v] = true
				queue = append(queue, v)
			}
		}
	}
	return members
}
