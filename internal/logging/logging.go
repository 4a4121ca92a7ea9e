package logging

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// Setup 设置全局 logrus 级别与输出格式
func Setup(level string, out io.Writer) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	logrus.SetLevel(lvl)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if out != nil {
		logrus.SetOutput(out)
	}
	return nil
}
