package mediahost

import (
	"context"
	"crypto/sha1"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"animal-nexus-go/internal/config"
	"animal-nexus-go/pkg/log"
)

// CloudinaryClient 是 Cloudinary 风格托管服务的客户端。
// 上传以 data URI 形式提交，请求按托管端要求做 SHA-1 签名。
type CloudinaryClient struct {
	cfg    config.CloudinaryConfig
	client *http.Client
	// now 可替换，测试中用来固定签名时间戳。
	now func() time.Time
}

// NewCloudinaryClient 创建一个新的 Cloudinary 客户端实例。
func NewCloudinaryClient(cfg config.CloudinaryConfig) *CloudinaryClient {
	return &CloudinaryClient{
		cfg:    cfg,
		client: &http.Client{Timeout: 60 * time.Second},
		now:    time.Now,
	}
}

// uploadResponse 是托管端上传接口的应答体。
type uploadResponse struct {
	SecureURL string `json:"secure_url"`
	PublicID  string `json:"public_id"`
}

// Upload 将完整的字节缓冲以 data URI 形式上传到托管端。
func (c *CloudinaryClient) Upload(ctx context.Context, data []byte, opts UploadOptions) (*UploadResult, error) {
	log.Infof("[MediaHost] 开始上传资产到 Cloudinary, folder: %s, resource_type: %s, size: %d", opts.Folder, opts.ResourceType, len(data))

	publicID := derivePublicID(opts.FileName)
	timestamp := strconv.FormatInt(c.now().Unix(), 10)

	// 参与签名的参数（file 与 api_key 除外），按字母序拼接后附加密钥做 SHA-1。
	signed := map[string]string{
		"folder":    opts.Folder,
		"public_id": publicID,
		"timestamp": timestamp,
	}
	if ext := deriveExtension(opts.FileName); ext != "" && opts.ResourceType == "raw" {
		signed["format"] = ext
	}

	form := url.Values{}
	form.Set("file", "data:application/octet-stream;base64,"+base64.StdEncoding.EncodeToString(data))
	form.Set("api_key", c.cfg.APIKey)
	form.Set("signature", c.sign(signed))
	for k, v := range signed {
		form.Set(k, v)
	}

	endpoint := fmt.Sprintf("%s/%s/%s/upload", strings.TrimRight(c.cfg.BaseURL, "/"), c.cfg.CloudName, opts.ResourceType)
	var respBody uploadResponse
	if err := c.postForm(ctx, endpoint, form, &respBody); err != nil {
		return nil, err
	}

	log.Infof("[MediaHost] 资产上传成功, public_id: %s", respBody.PublicID)
	return &UploadResult{
		URL:      respBody.SecureURL,
		PublicID: respBody.PublicID,
		Size:     int64(len(data)),
	}, nil
}

// Destroy 按资产标识删除托管端上的资产。
func (c *CloudinaryClient) Destroy(ctx context.Context, publicID, resourceType string) error {
	log.Infof("[MediaHost] 开始删除 Cloudinary 资产, public_id: %s", publicID)

	timestamp := strconv.FormatInt(c.now().Unix(), 10)
	signed := map[string]string{
		"public_id": publicID,
		"timestamp": timestamp,
	}

	form := url.Values{}
	form.Set("api_key", c.cfg.APIKey)
	form.Set("signature", c.sign(signed))
	for k, v := range signed {
		form.Set(k, v)
	}

	endpoint := fmt.Sprintf("%s/%s/%s/destroy", strings.TrimRight(c.cfg.BaseURL, "/"), c.cfg.CloudName, resourceType)
	var respBody struct {
		Result string `json:"result"`
	}
	if err := c.postForm(ctx, endpoint, form, &respBody); err != nil {
		return err
	}
	if respBody.Result != "ok" && respBody.Result != "not found" {
		return fmt.Errorf("托管端拒绝删除资产 %s: %s", publicID, respBody.Result)
	}
	return nil
}

// postForm 发送表单请求并解析 JSON 应答。
func (c *CloudinaryClient) postForm(ctx context.Context, endpoint string, form url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("创建媒体托管端请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("调用媒体托管端失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("媒体托管端返回错误 [%d]: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("解析媒体托管端应答失败: %w", err)
	}
	return nil
}

// sign 按参数名字母序拼接 "k=v" 并附加密钥，返回 SHA-1 的十六进制摘要。
func (c *CloudinaryClient) sign(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+params[k])
	}

	sum := sha1.Sum([]byte(strings.Join(pairs, "&") + c.cfg.APISecret))
	return hex.EncodeToString(sum[:])
}
