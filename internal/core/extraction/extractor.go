package extraction

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/nevergoodstudy-hub/wechat-article-summarizer-sub002/internal/core/common"
	"github.com/nevergoodstudy-hub/wechat-article-summarizer-sub002/internal/core/model"
	"github.com/nevergoodstudy-hub/wechat-article-summarizer-sub002/internal/llm"
)

// Extractor pulls entities and relationships out of a text chunk.
// Extraction heuristics are noisy by nature, so the graph pipeline treats
// the output as best-effort rather than authoritative.
type Extractor interface {
	Extract(ctx context.Context, text string) (*model.ExtractionResult, error)
	Name() string
	IsAvailable() bool
}

// DefaultEntityTypes are the categories the LLM extractor is steered toward.
var DefaultEntityTypes = []string{"人物", "组织", "地点", "事件", "概念", "技术", "产品", "时间"}

// DefaultRelationshipTypes are the relation labels the LLM extractor is
// steered toward.
var DefaultRelationshipTypes = []string{"属于", "位于", "创建", "参与", "相关", "影响", "包含", "合作", "竞争", "继承"}

const extractionPrompt = `你是一个专业的知识图谱构建助手。请从以下文本中提取实体和关系。

**任务说明**:
1. 识别文本中的重要实体（如人物、组织、地点、事件、概念、技术、产品等）
2. 识别实体之间的关系
3. 为每个实体和关系提供简短描述

**输出格式**（严格的 JSON 格式）:
{
    "entities": [
        {"name": "实体名称", "type": "实体类型", "description": "简短描述"}
    ],
    "relationships": [
        {"source": "源实体名称", "target": "目标实体名称", "type": "关系类型", "description": "简短描述"}
    ]
}

**可用实体类型**: %s
**可用关系类型**: %s

**文本内容**:
%s

请输出 JSON 格式的提取结果：`

// entityID derives a stable 12-hex-char id from name and type, so the same
// entity extracted from different chunks lands on the same graph node.
func entityID(name, entityType string) string {
	sum := md5.Sum([]byte(entityType + ":" + name))
	return hex.EncodeToString(sum[:])[:12]
}

func relationshipID(sourceID, relType, targetID string) string {
	sum := md5.Sum([]byte(sourceID + "-" + relType + "-" + targetID))
	return hex.EncodeToString(sum[:])[:12]
}

type extractionPayload struct {
	Entities []struct {
		Name        string `json:"name"`
		Type        string `json:"type"`
		Description string `json:"description"`
	} `json:"entities"`
	Relationships []struct {
		Source      string `json:"source"`
		Target      string `json:"target"`
		Type        string `json:"type"`
		Description string `json:"description"`
	} `json:"relationships"`
}

// LLMExtractor prompts a chat model for a JSON entity/relationship listing.
type LLMExtractor struct {
	client            llm.Client
	entityTypes       []string
	relationshipTypes []string
	maxTextLength     int
	logger            *logrus.Logger
}

func NewLLMExtractor(client llm.Client, logger *logrus.Logger) *LLMExtractor {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &LLMExtractor{
		client:            client,
		entityTypes:       DefaultEntityTypes,
		relationshipTypes: DefaultRelationshipTypes,
		maxTextLength:     4000,
		logger:            logger,
	}
}

func (e *LLMExtractor) Name() string { return "llm-extractor" }

func (e *LLMExtractor) IsAvailable() bool { return e.client != nil }

func (e *LLMExtractor) Extract(ctx context.Context, text string) (*model.ExtractionResult, error) {
	if !e.IsAvailable() {
		return nil, fmt.Errorf("llm extractor has no backing client")
	}
	text = common.Truncate(text, e.maxTextLength)

	prompt := fmt.Sprintf(extractionPrompt,
		strings.Join(e.entityTypes, ", "),
		strings.Join(e.relationshipTypes, ", "),
		text)

	resp, err := e.client.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("extraction call failed: %w", err)
	}

	payload, err := common.ParseJSON[extractionPayload](resp.Text)
	if err != nil {
		return nil, fmt.Errorf("extraction response parse failed: %w", err)
	}
	return e.toResult(payload, text), nil
}

// toResult converts the parsed payload, stubbing entities that only appear
// as relationship endpoints. Extraction output is noisy; a dangling name is
// more often a missed entity than garbage.
func (e *LLMExtractor) toResult(payload extractionPayload, sourceText string) *model.ExtractionResult {
	result := &model.ExtractionResult{SourceText: sourceText}
	nameToID := make(map[string]string)

	for _, ent := range payload.Entities {
		name := strings.TrimSpace(ent.Name)
		if name == "" {
			continue
		}
		entType := strings.TrimSpace(ent.Type)
		if entType == "" {
			entType = "概念"
		}
		id := entityID(name, entType)
		if _, dup := nameToID[name]; dup {
			continue
		}
		nameToID[name] = id
		result.Entities = append(result.Entities, model.Entity{
			ID:          id,
			Name:        name,
			Type:        entType,
			Description: strings.TrimSpace(ent.Description),
		})
	}

	stub := func(name string) string {
		if id, ok := nameToID[name]; ok {
			return id
		}
		id := entityID(name, "概念")
		nameToID[name] = id
		result.Entities = append(result.Entities, model.Entity{ID: id, Name: name, Type: "概念"})
		return id
	}

	for _, rel := range payload.Relationships {
		source := strings.TrimSpace(rel.Source)
		target := strings.TrimSpace(rel.Target)
		if source == "" || target == "" {
			continue
		}
		relType := strings.TrimSpace(rel.Type)
		if relType == "" {
			relType = "相关"
		}
		sourceID := stub(source)
		targetID := stub(target)
		result.Relationships = append(result.Relationships, model.Relationship{
			ID:          relationshipID(sourceID, relType, targetID),
			SourceID:    sourceID,
			TargetID:    targetID,
			Type:        relType,
			Description: strings.TrimSpace(rel.Description),
			Weight:      1.0,
		})
	}

	e.logger.WithFields(logrus.Fields{
		"entities":      len(result.Entities),
		"relationships": len(result.Relationships),
	}).Debug("extraction parsed")
	return result
}
