// file: dto/challenge.go
package dto

import "strings"

// ========== 请求 DTO ==========

type CreateChallengeReq struct {
	// 规范字段（snake_case）
	ChallengeName string  `json:"challenge_name"`
	CategoryID    uint32  `json:"category_id"`
	Author        string  `json:"author"`
	Description   string  `json:"description"`
	Flag          string  `json:"flag"`
	Difficulty    string  `json:"difficulty"` // easy / medium / hard
	InitialScore  uint    `json:"initial_score"`
	MinScore      uint    `json:"min_score"`
	DecayRatio    float32 `json:"decay_ratio"`

	// 仅用于兼容旧客户端（camelCase 别名），注意：所有别名都与上面 tag 不重复
	ChallengeNameCamel string  `json:"challengeName"`
	CategoryIDCamel    uint32  `json:"categoryId"`
	InitialScoreCamel  uint    `json:"initialScore"`
	MinScoreCamel      uint    `json:"minScore"`
	DecayRatioCamel    float32 `json:"decayRatio"`
}

// Normalize: 将 camelCase 别名归一化到 snake_case，并做轻量默认值处理
func (r *CreateChallengeReq) Normalize() {
	if r.ChallengeName == "" && r.ChallengeNameCamel != "" {
		r.ChallengeName = r.ChallengeNameCamel
	}
	if r.CategoryID == 0 && r.CategoryIDCamel != 0 {
		r.CategoryID = r.CategoryIDCamel
	}
	if r.InitialScore == 0 && r.InitialScoreCamel != 0 {
		r.InitialScore = r.InitialScoreCamel
	}
	if r.MinScore == 0 && r.MinScoreCamel != 0 {
		r.MinScore = r.MinScoreCamel
	}
	if r.DecayRatio == 0 && r.DecayRatioCamel != 0 {
		r.DecayRatio = r.DecayRatioCamel
	}

	// 清洗/默认值
	r.ChallengeName = strings.TrimSpace(r.ChallengeName)
	r.Author = strings.TrimSpace(r.Author)
	r.Description = strings.TrimSpace(r.Description)
	r.Flag = strings.TrimSpace(r.Flag)
	r.Difficulty = strings.ToLower(strings.TrimSpace(r.Difficulty))

	if r.Difficulty == "" {
		r.Difficulty = "medium"
	}
	if r.DecayRatio == 0 {
		r.DecayRatio = 0.1
	}
}

type UpdateChallengeReq struct {
	State       *string  `json:"state"` // visible/hidden
	Description *string  `json:"description"`
	Difficulty  *string  `json:"difficulty"`
	Flag        *string  `json:"flag"`
	MinScore    *uint    `json:"min_score"`
	DecayRatio  *float32 `json:"decay_ratio"`
}

type SubmitFlagReq struct {
	Flag      string `json:"flag"`
	FlagCamel string `json:"Flag"`
}

func (r *SubmitFlagReq) Normalize() {
	if r.Flag == "" && r.FlagCamel != "" {
		r.Flag = r.FlagCamel
	}
}

// ========== 响应 DTO ==========

type ChallengeItemResp struct {
	ID            uint32 `json:"id"`
	ChallengeName string `json:"challenge_name"`
	Type          string `json:"type"`
	Difficulty    string `json:"difficulty"`
	CurrentScore  uint   `json:"current_score"`
	SolvedCount   uint   `json:"solved_count"`
	Solved        bool   `json:"solved"`
}

type HintItem struct {
	ID       uint32 `json:"id"`
	Cost     uint   `json:"cost"`
	Unlocked bool   `json:"unlocked"`
	// 只有已购买的提示才回填内容
	Content string `json:"content,omitempty"`
}

type ChallengeDetailResp struct {
	ID            uint32     `json:"id"`
	ChallengeName string     `json:"challenge_name"`
	Author        string     `json:"author"`
	Description   string     `json:"description"`
	Difficulty    string     `json:"difficulty"`
	CurrentScore  uint       `json:"current_score"`
	SolvedCount   uint       `json:"solved_count"`
	Hints         []HintItem `json:"hints"`
}

// ====== Admin 专用响应 DTO ======

type AdminChallengeItemResp struct {
	ID            uint32 `json:"id"`
	ChallengeName string `json:"challenge_name"`
	Type          string `json:"type"`
	Difficulty    string `json:"difficulty"`
	State         string `json:"state"`
	CurrentScore  uint   `json:"current_score"`
	SolvedCount   uint   `json:"solved_count"`
	UpdatedAt     string `json:"updated_at"`
}

type AdminHintItem struct {
	ID        uint32 `json:"id"`
	Content   string `json:"content"`
	Cost      uint   `json:"cost"`
	SortOrder int    `json:"sort_order"`
}

type AdminChallengeDetailResp struct {
	ID            uint32          `json:"id"`
	ChallengeName string          `json:"challenge_name"`
	Type          string          `json:"type"`
	Author        string          `json:"author"`
	Description   string          `json:"description"`
	Difficulty    string          `json:"difficulty"`
	State         string          `json:"state"`
	Flag          string          `json:"flag"`
	CurrentScore  uint            `json:"current_score"`
	InitialScore  uint            `json:"initial_score"`
	MinScore      uint            `json:"min_score"`
	DecayRatio    float32         `json:"decay_ratio"`
	SolvedCount   uint            `json:"solved_count"`
	Hints         []AdminHintItem `json:"hints"`
	CreatedAt     string          `json:"created_at"`
	UpdatedAt     string          `json:"updated_at"`
}
