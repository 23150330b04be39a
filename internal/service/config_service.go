package service

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"go-rbacadmin/internal/apperr"
	"go-rbacadmin/internal/domain/model"
	"go-rbacadmin/internal/logging"
	"go-rbacadmin/internal/pkg/cache"
	"go-rbacadmin/internal/repository/dao"

	"go.uber.org/zap"
)

const (
	configKeyPrefix = "config:"
	configTTL       = time.Hour
)

// ConfigService 系统配置；启用的配置在每次写入后整体预热到缓存
type ConfigService struct {
	Configs *dao.ConfigDAO
	Cache   cache.Cache
}

func NewConfigService(d *dao.ConfigDAO, c cache.Cache) *ConfigService {
	return &ConfigService{Configs: d, Cache: c}
}

type ConfigQuery struct {
	PageQuery
	ConfigKey   string `form:"configKey"`
	ConfigName  string `form:"configName"`
	ConfigGroup string `form:"configGroup"`
	Status      *int8  `form:"status" binding:"omitempty,oneof=0 1"`
}

type ConfigCreate struct {
	ConfigKey   string `json:"configKey" binding:"required,max=128"`
	ConfigValue string `json:"configValue"`
	ConfigType  string `json:"configType" binding:"omitempty,oneof=string number boolean json"`
	ConfigGroup string `json:"configGroup" binding:"max=64"`
	ConfigName  string `json:"configName" binding:"max=128"`
	Remark      string `json:"remark" binding:"max=255"`
	IsSystem    *int8  `json:"isSystem" binding:"omitempty,oneof=0 1"`
	Status      *int8  `json:"status" binding:"omitempty,oneof=0 1"`
}

type ConfigUpdate struct {
	ConfigKey   *string `json:"configKey" binding:"omitempty,min=1,max=128"`
	ConfigValue *string `json:"configValue"`
	ConfigType  *string `json:"configType" binding:"omitempty,oneof=string number boolean json"`
	ConfigGroup *string `json:"configGroup" binding:"omitempty,max=64"`
	ConfigName  *string `json:"configName" binding:"omitempty,max=128"`
	Remark      *string `json:"remark" binding:"omitempty,max=255"`
	IsSystem    *int8   `json:"isSystem" binding:"omitempty,oneof=0 1"`
	Status      *int8   `json:"status" binding:"omitempty,oneof=0 1"`
}

// ConfigValuePatch 只改值、类型、状态
type ConfigValuePatch struct {
	ConfigValue *string `json:"configValue"`
	ConfigType  *string `json:"configType" binding:"omitempty,oneof=string number boolean json"`
	Status      *int8   `json:"status" binding:"omitempty,oneof=0 1"`
}

// ConfigValue 对外只读视图
type ConfigValue struct {
	ConfigKey   string `json:"configKey"`
	ConfigValue string `json:"configValue"`
	ConfigType  string `json:"configType"`
}

func (s *ConfigService) List(ctx context.Context, q ConfigQuery) ([]model.SysConfig, int64, error) {
	f := dao.ConfigFilter{ConfigKey: q.ConfigKey, ConfigName: q.ConfigName, ConfigGroup: q.ConfigGroup, Status: q.Status}
	return s.Configs.List(ctx, f, q.paging())
}

func (s *ConfigService) Get(ctx context.Context, id int64) (*model.SysConfig, error) {
	c, err := s.Configs.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, apperr.NotFound("配置不存在")
	}
	return c, nil
}

func (s *ConfigService) Create(ctx context.Context, in ConfigCreate) (*model.SysConfig, error) {
	c := &model.SysConfig{
		ConfigKey:   strings.TrimSpace(in.ConfigKey),
		ConfigValue: in.ConfigValue,
		ConfigType:  in.ConfigType,
		ConfigGroup: in.ConfigGroup,
		ConfigName:  in.ConfigName,
		Remark:      in.Remark,
		IsSystem:    int8OrDefault(in.IsSystem, 0),
		Status:      int8OrDefault(in.Status, 1),
	}
	if c.ConfigType == "" {
		c.ConfigType = model.ConfigTypeString
	}
	if c.ConfigGroup == "" {
		c.ConfigGroup = "general"
	}
	if err := ValidateConfigValue(c.ConfigType, c.ConfigValue); err != nil {
		return nil, err
	}
	if err := s.Configs.Create(ctx, c); err != nil {
		return nil, configConflict(err)
	}
	s.refresh(ctx, c.ConfigKey)
	return c, nil
}

func (s *ConfigService) Update(ctx context.Context, id int64, in ConfigUpdate) (*model.SysConfig, error) {
	cur, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	cols := map[string]interface{}{}
	if in.ConfigKey != nil {
		cols["config_key"] = strings.TrimSpace(*in.ConfigKey)
	}
	if in.ConfigGroup != nil {
		cols["config_group"] = *in.ConfigGroup
	}
	if in.ConfigName != nil {
		cols["config_name"] = *in.ConfigName
	}
	if in.Remark != nil {
		cols["remark"] = *in.Remark
	}
	if in.IsSystem != nil {
		cols["is_system"] = *in.IsSystem
	}
	return s.write(ctx, cur, cols, ConfigValuePatch{ConfigValue: in.ConfigValue, ConfigType: in.ConfigType, Status: in.Status})
}

func (s *ConfigService) PatchValue(ctx context.Context, id int64, in ConfigValuePatch) (*model.SysConfig, error) {
	cur, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.write(ctx, cur, map[string]interface{}{}, in)
}

func (s *ConfigService) write(ctx context.Context, cur *model.SysConfig, cols map[string]interface{}, p ConfigValuePatch) (*model.SysConfig, error) {
	typ, val := cur.ConfigType, cur.ConfigValue
	if p.ConfigType != nil {
		typ = *p.ConfigType
		cols["config_type"] = typ
	}
	if p.ConfigValue != nil {
		val = *p.ConfigValue
		cols["config_value"] = val
	}
	if p.Status != nil {
		cols["status"] = *p.Status
	}
	if err := ValidateConfigValue(typ, val); err != nil {
		return nil, err
	}
	if err := s.Configs.Update(ctx, cur.ID, cols); err != nil {
		return nil, configConflict(err)
	}
	s.refresh(ctx, cur.ConfigKey)
	return s.Get(ctx, cur.ID)
}

// Delete 系统内置配置不可删除
func (s *ConfigService) Delete(ctx context.Context, id int64) error {
	cur, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if cur.IsSystem == 1 {
		return apperr.Validation("系统内置配置不允许删除", nil)
	}
	if err := s.Configs.Delete(ctx, id); err != nil {
		return err
	}
	s.refresh(ctx, cur.ConfigKey)
	return nil
}

// Value 读取启用配置，优先走缓存
func (s *ConfigService) Value(ctx context.Context, key string) (*ConfigValue, error) {
	var v ConfigValue
	if s.Cache != nil {
		if raw, _ := s.Cache.Get(ctx, configKeyPrefix+key); cache.IsNilSentinel(raw) {
			return nil, apperr.NotFound("配置不存在")
		}
	}
	if cache.GetJSON(ctx, s.Cache, configKeyPrefix+key, &v) {
		return &v, nil
	}
	c, err := s.Configs.FindByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	if c == nil || c.Status != 1 {
		if s.Cache != nil {
			_ = s.Cache.SetEX(ctx, configKeyPrefix+key, cache.WrapNil(), time.Minute)
		}
		return nil, apperr.NotFound("配置不存在")
	}
	v = ConfigValue{ConfigKey: c.ConfigKey, ConfigValue: c.ConfigValue, ConfigType: c.ConfigType}
	_ = cache.SetJSON(ctx, s.Cache, configKeyPrefix+key, v, configTTL)
	return &v, nil
}

// Preload 把全部启用配置写入缓存
func (s *ConfigService) Preload(ctx context.Context) (int, error) {
	if s.Cache == nil {
		return 0, nil
	}
	list, err := s.Configs.ListActive(ctx)
	if err != nil {
		return 0, err
	}
	for _, c := range list {
		v := ConfigValue{ConfigKey: c.ConfigKey, ConfigValue: c.ConfigValue, ConfigType: c.ConfigType}
		if err := cache.SetJSON(ctx, s.Cache, configKeyPrefix+c.ConfigKey, v, configTTL); err != nil {
			return 0, err
		}
	}
	return len(list), nil
}

// refresh 写入后先清掉旧 key（可能已改名/禁用/删除）再整体预热
func (s *ConfigService) refresh(ctx context.Context, oldKey string) {
	if s.Cache == nil {
		return
	}
	_ = s.Cache.Del(ctx, configKeyPrefix+oldKey)
	if _, err := s.Preload(ctx); err != nil {
		logging.FromContext(ctx).Warn("config_preload_failed", zap.Error(err))
	}
}

// ValidateConfigValue 按类型校验配置值
func ValidateConfigValue(typ, val string) error {
	var ok bool
	switch typ {
	case model.ConfigTypeString:
		ok = true
	case model.ConfigTypeNumber:
		_, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		ok = err == nil
	case model.ConfigTypeBoolean:
		ok = val == "true" || val == "false"
	case model.ConfigTypeJSON:
		ok = json.Valid([]byte(val))
	default:
		return apperr.Validation("不支持的配置类型", map[string]string{"configType": typ})
	}
	if !ok {
		return apperr.Validation("配置值与类型不匹配", map[string]string{"configType": typ, "configValue": val})
	}
	return nil
}

func configConflict(err error) error {
	if apperr.KindOf(err) == apperr.KindConflict {
		return apperr.Conflict("配置键已存在")
	}
	return err
}
