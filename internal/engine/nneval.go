package engine

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	ort "github.com/yalue/onnxruntime_go"

	"xiangqi/internal/labels"
	"xiangqi/internal/mcts"
	"xiangqi/internal/xiangqi"
)

// ModelConfig ONNX 模型：输入 [1,10,9,9]，输出策略 [1,2086] 与估值 [1,1]（tanh，红方视角）
type ModelConfig struct {
	Path         string   `yaml:"path"`
	Library      string   `yaml:"library"`
	InputName    string   `yaml:"input_name"`
	PolicyName   string   `yaml:"policy_name"`
	ValueName    string   `yaml:"value_name"`
	Providers    []string `yaml:"providers"`     // 依次尝试，如 cuda, directml, cpu
	Softmax      bool     `yaml:"softmax"`       // 策略头输出 logits 时打开
	CacheSize    int      `yaml:"cache_size"`    // 0 关闭缓存
	IntraThreads int      `yaml:"intra_threads"` // 0 用 ORT 默认
}

func DefaultModelConfig() ModelConfig {
	return ModelConfig{
		Library:    defaultORTLibrary(),
		InputName:  "input",
		PolicyName: "policy",
		ValueName:  "value",
		Providers:  []string{"cuda", "cpu"},
		Softmax:    true,
	}
}

// ONNXEvaluator 单局面同步推理；Run 用互斥锁串行化，可被多个搜索共享
type ONNXEvaluator struct {
	mu      sync.Mutex
	session *ort.AdvancedSession
	softmax bool

	input  []float32
	policy []float32
	value  []float32

	inputs  []ort.Value
	outputs []ort.Value

	log zerolog.Logger
}

var ortInitMu sync.Mutex

func initORT(libPath string, log zerolog.Logger) error {
	ortInitMu.Lock()
	defer ortInitMu.Unlock()
	if ort.IsInitialized() {
		return nil
	}
	absLibPath, err := resolveORTSharedLibraryPath(libPath)
	if err != nil {
		return err
	}
	// 依赖库和主库放在同一目录
	libDir := filepath.Dir(absLibPath)
	if err := prependPathEnv("PATH", libDir); err != nil {
		log.Warn().Err(err).Msg("update PATH")
	}
	if err := configureORTSearchPath(libDir); err != nil {
		log.Warn().Err(err).Msg("update library search path")
	}
	_ = setNativeEnv("ORT_LOGGING_LEVEL", "3")

	ort.SetSharedLibraryPath(absLibPath)
	if err := ort.InitializeEnvironment(); err != nil {
		return fmt.Errorf("initialize onnxruntime (%s): %w", absLibPath, err)
	}
	log.Info().Str("library", absLibPath).Msg("onnxruntime initialized")
	return nil
}

// prependPathEnv 已经在列表里就不动
func prependPathEnv(key, dir string) error {
	old := os.Getenv(key)
	if old == "" {
		return setNativeEnv(key, dir)
	}
	for _, p := range filepath.SplitList(old) {
		if p == dir {
			return nil
		}
	}
	return setNativeEnv(key, dir+string(os.PathListSeparator)+old)
}

func NewONNXEvaluator(cfg ModelConfig, log zerolog.Logger) (*ONNXEvaluator, error) {
	modelPath, err := resolveModelPath(cfg.Path)
	if err != nil {
		return nil, err
	}
	if err := initORT(cfg.Library, log); err != nil {
		return nil, err
	}

	n := &ONNXEvaluator{
		softmax: cfg.Softmax,
		input:   make([]float32, TensorSize),
		policy:  make([]float32, labels.Size),
		value:   make([]float32, 1),
		log:     log,
	}

	inputTensor, err := ort.NewTensor(ort.NewShape(1, TensorRows, TensorCols, TensorPlanes), n.input)
	if err != nil {
		return nil, fmt.Errorf("input tensor: %w", err)
	}
	policyTensor, err := ort.NewTensor(ort.NewShape(1, labels.Size), n.policy)
	if err != nil {
		inputTensor.Destroy()
		return nil, fmt.Errorf("policy tensor: %w", err)
	}
	valueTensor, err := ort.NewTensor(ort.NewShape(1, 1), n.value)
	if err != nil {
		inputTensor.Destroy()
		policyTensor.Destroy()
		return nil, fmt.Errorf("value tensor: %w", err)
	}
	n.inputs = []ort.Value{inputTensor}
	n.outputs = []ort.Value{policyTensor, valueTensor}

	inputNames := []string{cfg.InputName}
	outputNames := []string{cfg.PolicyName, cfg.ValueName}

	providers := cfg.Providers
	if len(providers) == 0 {
		providers = []string{"cpu"}
	}
	for _, name := range providers {
		name = strings.ToLower(name)
		log.Info().Str("provider", name).Msg("NN: attempting to initialize")

		so, err := ort.NewSessionOptions()
		if err != nil {
			log.Warn().Err(err).Msg("NN: session options failed")
			continue
		}
		if cfg.IntraThreads > 0 {
			_ = so.SetIntraOpNumThreads(cfg.IntraThreads)
		}
		if err := setupProvider(name, so); err != nil {
			log.Warn().Err(err).Str("provider", name).Msg("NN: provider setup failed")
			so.Destroy()
			continue
		}

		s, err := ort.NewAdvancedSession(modelPath, inputNames, outputNames, n.inputs, n.outputs, so)
		so.Destroy()
		if err != nil {
			log.Warn().Err(err).Str("provider", name).Msg("NN: session creation failed")
			continue
		}

		// 预热
		EncodeTensor(xiangqi.NewInitialState(), n.input)
		if err := s.Run(); err != nil {
			log.Warn().Err(err).Str("provider", name).Msg("NN: warmup failed")
			s.Destroy()
			continue
		}

		log.Info().Str("provider", name).Str("model", modelPath).Msg("NN: initialized")
		n.session = s
		return n, nil
	}

	n.Close()
	return nil, fmt.Errorf("failed to initialize NN with any provider (%s)", strings.Join(providers, ", "))
}

func setupProvider(name string, so *ort.SessionOptions) error {
	switch name {
	case "cuda":
		cudaOpts, err := ort.NewCUDAProviderOptions()
		if err != nil {
			return err
		}
		defer cudaOpts.Destroy()
		return so.AppendExecutionProviderCUDA(cudaOpts)
	case "directml":
		return so.AppendExecutionProviderDirectML(0)
	case "cpu":
		return nil
	}
	return fmt.Errorf("unknown execution provider %q", name)
}

func (n *ONNXEvaluator) Close() {
	if n.session != nil {
		n.session.Destroy()
		n.session = nil
	}
	for _, v := range n.inputs {
		v.Destroy()
	}
	for _, v := range n.outputs {
		v.Destroy()
	}
	n.inputs, n.outputs = nil, nil
}

// Evaluate 实现 mcts.Evaluator
func (n *ONNXEvaluator) Evaluate(s *xiangqi.State) (mcts.Prediction, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.session == nil {
		return mcts.Prediction{}, fmt.Errorf("onnx evaluator is closed")
	}
	EncodeTensor(s, n.input)
	if err := n.session.Run(); err != nil {
		return mcts.Prediction{}, fmt.Errorf("onnx run: %w", err)
	}

	policy := make([]float32, len(n.policy))
	copy(policy, n.policy)
	if n.softmax {
		softmaxInPlace(policy)
	}
	v := n.value[0]
	if v > 1 {
		v = 1
	} else if v < -1 {
		v = -1
	}
	return mcts.Prediction{Policy: policy, Value: v}, nil
}

func softmaxInPlace(xs []float32) {
	if len(xs) == 0 {
		return
	}
	maxLogit := xs[0]
	for _, x := range xs[1:] {
		if x > maxLogit {
			maxLogit = x
		}
	}
	var sum float64
	for i, x := range xs {
		e := math.Exp(float64(x - maxLogit))
		xs[i] = float32(e)
		sum += e
	}
	for i := range xs {
		xs[i] = float32(float64(xs[i]) / sum)
	}
}
