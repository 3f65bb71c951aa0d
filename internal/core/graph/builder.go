package graph

import (
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/nevergoodstudy-hub/wechat-article-summarizer-sub002/internal/core/model"
)

// Builder unions per-chunk extraction results into one knowledge graph.
// Extraction is noisy: duplicate entities are merged, duplicate
// relationships collapsed and dangling endpoints dropped with a logged
// signal instead of failing the build.
type Builder struct {
	logger *logrus.Logger
}

func NewBuilder(logger *logrus.Logger) *Builder {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Builder{logger: logger}
}

func (b *Builder) Name() string { return "graph-builder" }

// Build constructs a graph from extraction results. Entities are deduped by
// id first, then by normalized name (the richest description wins,
// attributes merge). Relationships dedupe on (source, type, target).
func (b *Builder) Build(extractions []*model.ExtractionResult) *model.KnowledgeGraph {
	entities := make(map[string]model.Entity)
	var entityOrder []string
	var relationships []model.Relationship

	for _, extraction := range extractions {
		if extraction == nil {
			continue
		}
		for _, entity := range extraction.Entities {
			existing, ok := entities[entity.ID]
			if !ok {
				entityOrder = append(entityOrder, entity.ID)
				entities[entity.ID] = entity
				continue
			}
			if existing.Description == "" && entity.Description != "" {
				existing.Description = entity.Description
			}
			existing.Attributes = mergeAttributes(existing.Attributes, entity.Attributes)
			entities[entity.ID] = existing
		}
		relationships = append(relationships, extraction.Relationships...)
	}

	entities, entityOrder, remap := mergeSameName(entities, entityOrder)

	kg := model.NewKnowledgeGraph()
	for _, id := range entityOrder {
		kg.AddEntity(entities[id])
	}

	seen := make(map[string]bool)
	dropped := 0
	for _, rel := range relationships {
		if id, ok := remap[rel.SourceID]; ok {
			rel.SourceID = id
		}
		if id, ok := remap[rel.TargetID]; ok {
			rel.TargetID = id
		}
		if _, ok := kg.GetEntity(rel.SourceID); !ok {
			dropped++
			continue
		}
		if _, ok := kg.GetEntity(rel.TargetID); !ok {
			dropped++
			continue
		}
		key := rel.SourceID + "-" + rel.Type + "-" + rel.TargetID
		if seen[key] {
			continue
		}
		seen[key] = true
		kg.AddRelationship(rel)
	}
	if dropped > 0 {
		b.logger.WithField("dropped", dropped).Debug("relationships with missing endpoints dropped")
	}

	b.logger.WithFields(logrus.Fields{
		"entities":      kg.EntityCount(),
		"relationships": kg.RelationshipCount(),
	}).Info("knowledge graph built")
	return kg
}

// Merge unions already-built graphs, id-deduped, first occurrence wins.
func (b *Builder) Merge(graphs []*model.KnowledgeGraph) *model.KnowledgeGraph {
	merged := model.NewKnowledgeGraph()
	for _, g := range graphs {
		if g == nil {
			continue
		}
		for _, entity := range g.Entities() {
			if _, ok := merged.GetEntity(entity.ID); !ok {
				merged.AddEntity(entity)
			}
		}
		for _, rel := range g.Relationships() {
			if _, ok := merged.GetRelationship(rel.ID); !ok {
				merged.AddRelationship(rel)
			}
		}
		for _, community := range g.Communities() {
			merged.AddCommunity(community)
		}
	}
	return merged
}

// mergeSameName collapses entities whose normalized names match. The entity
// with the longest description survives; the remap table routes relationship
// endpoints from absorbed ids onto the survivor.
func mergeSameName(entities map[string]model.Entity, order []string) (map[string]model.Entity, []string, map[string]string) {
	byName := make(map[string][]string)
	for _, id := range order {
		name := strings.ToLower(strings.TrimSpace(entities[id].Name))
		byName[name] = append(byName[name], id)
	}

	remap := make(map[string]string)
	for _, ids := range byName {
		if len(ids) < 2 {
			continue
		}
		best := ids[0]
		for _, id := range ids[1:] {
			if len(entities[id].Description) > len(entities[best].Description) {
				best = id
			}
		}
		survivor := entities[best]
		for _, id := range ids {
			if id == best {
				continue
			}
			survivor.Attributes = mergeAttributes(survivor.Attributes, entities[id].Attributes)
			remap[id] = best
			delete(entities, id)
		}
		entities[best] = survivor
	}

	if len(remap) == 0 {
		return entities, order, remap
	}
	kept := order[:0]
	for _, id := range order {
		if _, absorbed := remap[id]; !absorbed {
			kept = append(kept, id)
		}
	}
	return entities, kept, remap
}

func mergeAttributes(dst, src map[string]string) map[string]string {
	if len(src) == 0 {
		return dst
	}
	if dst == nil {
		dst = make(map[string]string, len(src))
	}
	for k, v := range src {
		if _, ok := dst[k]; !ok {
			dst[k] = v
		}
	}
	return dst
}
