package model

// Entity is a node in a knowledge graph.
type Entity struct {
	ID          string
	Name        string
	Type        string
	Description string
	Attributes  map[string]string
}

// Relationship is a directed edge between two entities. Weight defaults to 1.
type Relationship struct {
	ID          string
	SourceID    string
	TargetID    string
	Type        string
	Description string
	Weight      float64
}

// Community is a cluster of related entities at a given hierarchy level.
// Level 0 is the base layer. Not mutated after detection, except that the
// community summarizer fills in Summary.
type Community struct {
	ID        string
	Level     int
	EntityIDs []string
	Title     string
	Summary   string
	Rank      float64
}

// ExtractionResult holds the entities and relationships found in one chunk.
type ExtractionResult struct {
	Entities      []Entity
	Relationships []Relationship
	SourceText    string
}

// KnowledgeGraph owns entities, relationships and communities keyed by id.
// Iteration order follows insertion order so that downstream detection and
// summarization stay deterministic.
type KnowledgeGraph struct {
	entities      map[string]Entity
	relationships map[string]Relationship
	communities   map[string]Community

	entityOrder    []string
	relationOrder  []string
	communityOrder []string
}

func NewKnowledgeGraph() *KnowledgeGraph {
	return &KnowledgeGraph{
		entities:      make(map[string]Entity),
		relationships: make(map[string]Relationship),
		communities:   make(map[string]Community),
	}
}

// AddEntity inserts or replaces an entity.
func (g *KnowledgeGraph) AddEntity(e Entity) {
	if _, ok := g.entities[e.ID]; !ok {
		g.entityOrder = append(g.entityOrder, e.ID)
	}
	g.entities[e.ID] = e
}

// AddRelationship inserts or replaces a relationship. Endpoints referencing
// missing entities are tolerated here; the graph builder decides whether to
// drop or stub them.
func (g *KnowledgeGraph) AddRelationship(r Relationship) {
	if r.Weight == 0 {
		r.Weight = 1.0
	}
	if _, ok := g.relationships[r.ID]; !ok {
		g.relationOrder = append(g.relationOrder, r.ID)
	}
	g.relationships[r.ID] = r
}

// AddCommunity inserts or replaces a community.
func (g *KnowledgeGraph) AddCommunity(c Community) {
	if _, ok := g.communities[c.ID]; !ok {
		g.communityOrder = append(g.communityOrder, c.ID)
	}
	g.communities[c.ID] = c
}

// GetEntity looks up an entity by id.
func (g *KnowledgeGraph) GetEntity(id string) (Entity, bool) {
	e, ok := g.entities[id]
	return e, ok
}

// GetRelationship looks up a relationship by id.
func (g *KnowledgeGraph) GetRelationship(id string) (Relationship, bool) {
	r, ok := g.relationships[id]
	return r, ok
}

// Entities returns all entities in insertion order.
func (g *KnowledgeGraph) Entities() []Entity {
	out := make([]Entity, 0, len(g.entityOrder))
	for _, id := range g.entityOrder {
		out = append(out, g.entities[id])
	}
	return out
}

// Relationships returns all relationships in insertion order.
func (g *KnowledgeGraph) Relationships() []Relationship {
	out := make([]Relationship, 0, len(g.relationOrder))
	for _, id := range g.relationOrder {
		out = append(out, g.relationships[id])
	}
	return out
}

// Communities returns all communities in insertion order.
func (g *KnowledgeGraph) Communities() []Community {
	out := make([]Community, 0, len(g.communityOrder))
	for _, id := range g.communityOrder {
		out = append(out, g.communities[id])
	}
	return out
}

// RelationshipsForEntity returns every relationship touching the entity,
// in either direction.
func (g *KnowledgeGraph) RelationshipsForEntity(entityID string) []Relationship {
	var out []Relationship
	for _, id := range g.relationOrder {
		r := g.relationships[id]
		if r.SourceID == entityID || r.TargetID == entityID {
			out = append(out, r)
		}
	}
	return out
}

// CommunityForEntity returns the first community containing the entity.
func (g *KnowledgeGraph) CommunityForEntity(entityID string) (Community, bool) {
	for _, id := range g.communityOrder {
		c := g.communities[id]
		for _, eid := range c.EntityIDs {
			if eid == entityID {
				return c, true
			}
		}
	}
	return Community{}, false
}

func (g *KnowledgeGraph) EntityCount() int       { return len(g.entities) }
func (g *KnowledgeGraph) RelationshipCount() int { return len(g.relationships) }
func (g *KnowledgeGraph) CommunityCount() int    { return len(g.communities) }
